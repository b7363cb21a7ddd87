package domain

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

const maxProfileFieldLength = 512

// ProviderProfile is the profile received from the identity provider callback.
// Optional fields are nil when the provider did not supply them.
type ProviderProfile struct {
	Username    string
	Email       *string
	DisplayName *string
	AvatarURL   *string
}

// ValidateExternalID trims and checks a provider account id.
func ValidateExternalID(externalID string) (string, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", fmt.Errorf("%w: external id is required", ErrValidation)
	}
	if len(externalID) > maxProfileFieldLength {
		return "", fmt.Errorf("%w: external id too long", ErrValidation)
	}
	return externalID, nil
}

// Validate normalizes the profile in place. Blank optional fields become nil.
func (p *ProviderProfile) Validate() error {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}

	p.Email = normalizeOptional(p.Email)
	p.DisplayName = normalizeOptional(p.DisplayName)
	p.AvatarURL = normalizeOptional(p.AvatarURL)

	for _, v := range []*string{&p.Username, p.Email, p.DisplayName, p.AvatarURL} {
		if v != nil && len(*v) > maxProfileFieldLength {
			return fmt.Errorf("%w: profile field too long", ErrValidation)
		}
	}

	// Only a bare address is stored; display-name forms are rejected.
	if p.Email != nil {
		addr, err := mail.ParseAddress(*p.Email)
		if err != nil || addr.Address != *p.Email {
			return fmt.Errorf("%w: invalid email", ErrValidation)
		}
	}
	if p.AvatarURL != nil {
		u, err := url.Parse(*p.AvatarURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: invalid avatar url", ErrValidation)
		}
	}
	return nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
