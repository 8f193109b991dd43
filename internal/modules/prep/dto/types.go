package dto

import "demoprep/internal/modules/prep/domain"

type GenerateInput struct {
	CompanyName       string
	LinkedInProfiles  []string
	AdditionalContext string
}

type ResultOutput struct {
	Result domain.Result
}
