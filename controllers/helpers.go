package controllers

// Created is the standard response for new items
type Created struct {
	ID string `json:"id"`
}

// Page wraps list responses so clients can drive their pagination
type Page struct {
	Items   interface{} `json:"items"`
	HasNext bool        `json:"hasNext"`
}
