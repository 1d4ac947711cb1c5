package model

type Rating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

type Review struct {
	UserID string `json:"userId"`
	Review string `json:"review"`
}

type ReviewSummary struct {
	Ratings []Rating `json:"ratings"`
	Reviews []Review `json:"review"`
}
