package seedr

import "context"

// Test runs the adapter's self-test, returning every field-scoped problem
// found (spec §4.5 "Test").
func (a *Adapter) Test(ctx context.Context) []ValidationFailure {
	a.mu.Lock()
	defer a.mu.Unlock()

	var failures []ValidationFailure

	user, err := a.api.GetUser(ctx)
	if err != nil {
		failures = append(failures, ValidationFailure{Field: fieldEmail, Message: err.Error()})
	} else if user.SpaceMax > 0 && float64(user.SpaceUsed)/float64(user.SpaceMax) >= 0.90 {
		failures = append(failures, ValidationFailure{
			Field:   fieldEmail,
			Message: "Seedr account storage is at or above 90% capacity",
			Warning: true,
		})
	}

	if err := a.disk.Test(a.cfg.DownloadDirectory); err != nil {
		failures = append(failures, ValidationFailure{Field: fieldDir, Message: err.Error()})
	}

	if a.cfg.MultiTenancyConfigured() {
		if msg := a.ownership.TestConnection(ctx); msg != "" {
			failures = append(failures, ValidationFailure{Field: fieldRedis, Message: msg})
		}
	} else if a.cfg.SharedAccount {
		failures = append(failures, ValidationFailure{
			Field:   fieldRedis,
			Message: "shared_account is enabled but no registry is fully configured",
			Warning: true,
		})
	}

	return failures
}
