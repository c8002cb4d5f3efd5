package notify

// PushData carries the click-through target.
type PushData struct {
	URL string `json:"url"`
}

// PushAction is one button on the notification.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// PushPayload is the wire contract the service worker on the client side
// expects. Field names must not change without updating it.
type PushPayload struct {
	Title   string       `json:"title"`
	Body    string       `json:"body"`
	Icon    string       `json:"icon"`
	Badge   string       `json:"badge"`
	Data    PushData     `json:"data"`
	Actions []PushAction `json:"actions"`
}

const (
	defaultIcon  = "/icons/icon-192.png"
	defaultBadge = "/icons/badge-72.png"
	// DefaultURL is where a click lands when no target is given.
	DefaultURL = "/dashboard"
)

// NewPush builds a payload with the standard icon, badge and view/dismiss
// actions. An empty url falls back to the dashboard.
func NewPush(title, body, url string) PushPayload {
	if url == "" {
		url = DefaultURL
	}
	return PushPayload{
		Title: title,
		Body:  body,
		Icon:  defaultIcon,
		Badge: defaultBadge,
		Data:  PushData{URL: url},
		Actions: []PushAction{
			{Action: "view", Title: "View"},
			{Action: "dismiss", Title: "Dismiss"},
		},
	}
}
