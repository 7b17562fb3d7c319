package types

// ModuleStatus is the admin view of one registered module.
type ModuleStatus struct {
	Name           string   `json:"name"`
	Implementation string   `json:"implementation"`
	State          string   `json:"state"`
	Classpath      []string `json:"classpath,omitempty"`
}

// ModulesResponse is returned by GET /modules.
type ModulesResponse struct {
	Modules []ModuleStatus `json:"modules"`
}

// BroadcastRequest is the body of POST /broadcast.
type BroadcastRequest struct {
	Message string `json:"message"`
}

// BroadcastResponse reports how many live targets the broadcast was handed to.
type BroadcastResponse struct {
	Targets int `json:"targets"`
}

// ErrorResponse is the JSON error envelope used by the admin API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
