package beacon

// Typed convenience wrappers over the core tracking path. Each assembles an
// AnalyticsEvent payload; sanitization happens centrally in trackEvent.

// TrackFieldEdit records an edit to a single field, with the value bucketed
// by FieldType for analytics.
func (c *Client) TrackFieldEdit(projectID, fieldName string, oldValue, newValue any) {
	c.trackEvent(EventFieldEdit, map[string]any{
		"projectId": projectID,
		"fieldName": fieldName,
		"fieldType": FieldType(fieldName, newValue),
		"oldValue":  oldValue,
		"newValue":  newValue,
	}, nil)
}

// TrackAction records a generic named action with optional details.
func (c *Client) TrackAction(action string, details map[string]any) {
	data := map[string]any{"action": action}
	for k, v := range details {
		data[k] = v
	}
	c.trackEvent(EventAction, data, nil)
}

// TrackPageView records a page visit and adds the page to the session's
// distinct page-view list.
func (c *Client) TrackPageView(pageName string) {
	c.trackEvent(EventPageView, map[string]any{
		"pageName": pageName,
	}, func(s *Session) {
		s.addPageView(pageName)
	})
}

// TrackProjectOpen records a project being opened and adds it to the
// session's distinct project list.
func (c *Client) TrackProjectOpen(projectID, projectName string) {
	c.trackEvent(EventProjectOpen, map[string]any{
		"projectId":   projectID,
		"projectName": projectName,
	}, func(s *Session) {
		s.addProject(projectID)
	})
}

// TrackFeatureUsage records use of a named feature.
func (c *Client) TrackFeatureUsage(feature string, details map[string]any) {
	data := map[string]any{"feature": feature}
	for k, v := range details {
		data[k] = v
	}
	c.trackEvent(EventFeatureUsage, data, nil)
}

// TrackNavigation records an in-app navigation.
func (c *Client) TrackNavigation(fromPage, toPage string) {
	c.trackEvent(EventNavigation, map[string]any{
		"from": fromPage,
		"to":   toPage,
	}, nil)
}

// TrackSearch records a search and its result count.
func (c *Client) TrackSearch(query string, resultCount int) {
	c.trackEvent(EventSearch, map[string]any{
		"query":       query,
		"resultCount": resultCount,
	}, nil)
}

// TrackError records an application-level error observation.
func (c *Client) TrackError(errorType, message string, context map[string]any) {
	data := map[string]any{
		"errorType": errorType,
		"message":   message,
	}
	for k, v := range context {
		data[k] = v
	}
	c.trackEvent(EventError, data, nil)
}

// TrackPerformance records a performance measurement.
func (c *Client) TrackPerformance(metric string, value float64, context map[string]any) {
	data := map[string]any{
		"metric": metric,
		"value":  value,
	}
	for k, v := range context {
		data[k] = v
	}
	c.trackEvent(EventPerformance, data, nil)
}

// TrackUIInteraction records an interaction with a UI element.
func (c *Client) TrackUIInteraction(element, action string, details map[string]any) {
	data := map[string]any{
		"element": element,
		"action":  action,
	}
	for k, v := range details {
		data[k] = v
	}
	c.trackEvent(EventUIInteraction, data, nil)
}

// TrackButtonClick records a button click on a page.
func (c *Client) TrackButtonClick(buttonName, pageName string) {
	c.TrackUIInteraction(buttonName, "click", map[string]any{"pageName": pageName})
}

// TrackTabSwitch records a tab change.
func (c *Client) TrackTabSwitch(fromTab, toTab string) {
	c.TrackUIInteraction("tab", "switch", map[string]any{"from": fromTab, "to": toTab})
}

// TrackFormSubmission records a form submit and whether it succeeded.
func (c *Client) TrackFormSubmission(formName string, success bool) {
	c.TrackAction("form_submission", map[string]any{
		"formName": formName,
		"success":  success,
	})
}

// TrackModalInteraction records opening, closing or acting inside a modal.
func (c *Client) TrackModalInteraction(modalName, action string) {
	c.TrackUIInteraction(modalName, action, map[string]any{"component": "modal"})
}

// TrackFileOperation records a file-level operation (upload, download,
// delete, rename).
func (c *Client) TrackFileOperation(operation, fileName string) {
	c.TrackAction("file_operation", map[string]any{
		"operation": operation,
		"fileName":  fileName,
	})
}
