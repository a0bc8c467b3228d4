package dto

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TagsResponse struct {
	Tags []TagResponse `json:"tags"`
}
