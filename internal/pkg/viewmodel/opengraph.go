package viewmodel

// OpenGraph holds the social preview tags of a marketing page
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	URL         string
}
