package repository

// LinkParser extracts raw href values from one page body.
type LinkParser interface {
	ParseLinks(body []byte) ([]string, error)
}
