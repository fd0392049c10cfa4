package lending

type DecisionReq struct {
	Status string `json:"status" validate:"required"`
}
