package protocol

// MimeTypeJSON is the only content type served by resources/read
const MimeTypeJSON = "application/json"

// Resource is a resource descriptor
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ListResourcesResult is the result of resources/list
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceParams are the parameters of resources/read
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ResourceContents is one entry of a resources/read result
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ReadResourceResult is the result of resources/read
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}
