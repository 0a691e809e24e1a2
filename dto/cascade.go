package dto

// CascadeResult reports what a cascading delete removed
type CascadeResult struct {
	Entity          string `json:"entity"`
	ID              string `json:"id"`
	DeletedIssues   int    `json:"deletedIssues"`
	DeletedComments int    `json:"deletedComments"`
	DeletedMembers  int    `json:"deletedMembers"`
}
