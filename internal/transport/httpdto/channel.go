package httpdto

type CreateChannelRequest struct {
	Name         string   `json:"name" binding:"required"`
	IsDM         bool     `json:"isDM"`
	Participants []string `json:"participants" binding:"required,min=1"`
}
