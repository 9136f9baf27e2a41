package agent

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/hupe1980/agentdesk/model"
)

// ChatConfig holds the options recognized by chat agents.
type ChatConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"`
	MaxHistory   int    `mapstructure:"max_history" validate:"min=1,max=1000"`
}

// CodeConfig holds the options recognized by code agents.
type CodeConfig struct {
	Language  string `mapstructure:"language" validate:"required"`
	Framework string `mapstructure:"framework"`
}

// SearchConfig holds the options recognized by search agents.
type SearchConfig struct {
	Engines    []string `mapstructure:"search_engines" validate:"min=1,dive,required"`
	MaxResults int      `mapstructure:"max_results" validate:"min=1,max=100"`
	// Timeout is the per engine timeout in seconds.
	Timeout   float64 `mapstructure:"timeout" validate:"gt=0,lte=300"`
	FilterAds bool    `mapstructure:"filter_ads"`
}

var validate = validator.New()

// decodeConfig overlays the recognized keys of raw onto out (which carries
// the defaults) and validates the result. Unknown keys are ignored; scalar
// values are converted leniently ("10" decodes into an int field).
func decodeConfig(component string, raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return &model.ConfigurationError{Component: component, Reason: err.Error()}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &model.ConfigurationError{
				Component: component,
				Field:     fe.Field(),
				Reason:    fmt.Sprintf("failed '%s' validation (value %v)", fe.Tag(), fe.Value()),
			}
		}
		return &model.ConfigurationError{Component: component, Reason: err.Error()}
	}
	return nil
}
