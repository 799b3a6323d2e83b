package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"leadcapture/formbridge/internal/constants"
)

// AdminClaims are carried by the tokens the host CMS mints for its
// administrators
type AdminClaims struct {
	Capability string `json:"capability"`
	UserLogin  string `json:"user_login,omitempty"`
	jwt.RegisteredClaims
}

func (c *AdminClaims) UserID() string { return c.Subject }
func (c *AdminClaims) Source() string { return "JWT" }

// HasCapability reports whether the token grants capability
func (c *AdminClaims) HasCapability(capability constants.Capability) bool {
	return c != nil && c.Capability == capability.String()
}
