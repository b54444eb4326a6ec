package models

// Wire shapes for the Regulations.gov v4 API.

type RegulationsListResponse struct {
	Data []RegulationsResource `json:"data"`
	Meta struct {
		HasNextPage   bool `json:"hasNextPage"`
		TotalElements int  `json:"totalElements"`
	} `json:"meta"`
}

type RegulationsDetailResponse struct {
	Data RegulationsResource `json:"data"`
}

type RegulationsResource struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	Attributes RegulationsAttributes `json:"attributes"`
}

type RegulationsAttributes struct {
	Title               string `json:"title"`
	Comment             string `json:"comment"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Organization        string `json:"organization"`
	StateProvinceRegion string `json:"stateProvinceRegion"`
	PostedDate          string `json:"postedDate"`
	AgencyID            string `json:"agencyId"`
	DocumentType        string `json:"documentType"`
	CommentEndDate      string `json:"commentEndDate"`
}
