package store

import "github.com/revogue/storefront-client/internal/core/domain"

// Bootstrap accounts seeded on first hydration so the offline fallback path
// works before any successful remote registration ever happened.
var bootstrapCredentials = []domain.StoredCredential{
	{
		AuthUser: domain.AuthUser{
			Username:  "admin",
			Role:      domain.RoleAdmin,
			FirstName: "Avery",
			LastName:  "Laurent",
		},
		Password: "admin123",
	},
	{
		AuthUser: domain.AuthUser{
			Username:  "sophie",
			Role:      domain.RoleUser,
			FirstName: "Sophie",
			LastName:  "Marchand",
		},
		Password: "sophie123",
	},
	{
		AuthUser: domain.AuthUser{
			Username:  "lucas",
			Role:      domain.RoleUser,
			FirstName: "Lucas",
			LastName:  "Moreau",
		},
		Password: "lucas123",
	},
}

// seedCredentials returns a fresh credential table holding exactly the
// bootstrap accounts, keyed by lowercased username.
func seedCredentials() map[string]domain.StoredCredential {
	table := make(map[string]domain.StoredCredential, len(bootstrapCredentials))
	for _, cred := range bootstrapCredentials {
		table[domain.CredentialKey(cred.Username)] = cred
	}
	return table
}
