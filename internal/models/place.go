package models

// Place is a resolved location. Code is a 3-letter identifier stored
// upper-cased, CountryCode a lower-cased 2-letter code. A Place only
// exists for a successful lookup; "not found" is an error, never a
// zero Place.
type Place struct {
	DisplayName string `json:"display_name"`
	Code        string `json:"code"`
	CountryCode string `json:"country_code"`
}
