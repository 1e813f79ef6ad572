package domain

var (
	MessageSuccessGetHealthFlags    = "health flags retrieved successfully"
	MessageSuccessUpdateHealthFlags = "health flags updated successfully"

	MessageFailedGetHealthFlags    = "failed to retrieve health flags"
	MessageFailedUpdateHealthFlags = "failed to update health flags"
)

type (
	UpdateHealthFlagsRequest struct {
		Flags []string `json:"flags" validate:"max=32,dive,required,max=64"`
	}

	HealthFlagsResponse struct {
		Flags []string `json:"flags"`
	}
)
