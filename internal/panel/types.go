package panel

// Server is a panel server as returned by the client API
type Server struct {
	Identifier string `json:"identifier"` // short id used in most client routes
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
}

// Backup is a server backup as returned by the client API
type Backup struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"` // display only, never parsed
	Bytes     uint64 `json:"bytes"`
}

// item wraps a single resource in the panel's {attributes: ...} envelope
type item[T any] struct {
	Attributes T `json:"attributes"`
}

// list is the panel's collection envelope. Data is a pointer so a body
// without a data member can be told apart from an empty collection.
type list[T any] struct {
	Data *[]item[T] `json:"data"`
}

type downloadLink struct {
	Attributes *struct {
		URL string `json:"url"`
	} `json:"attributes"`
}

// errorEnvelope is the body the panel sends with non-2xx responses
type errorEnvelope struct {
	Errors []struct {
		Code   string `json:"code"`
		Status string `json:"status"`
		Detail string `json:"detail"`
	} `json:"errors"`
}
