package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

func grantCmd(load loadFunc) *cobra.Command {
	var email, role, city string
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Create or update the role record of an email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := logger.ContextWithLogger(cmd.Context(), log)
			repo, closeRepo, err := openRepository(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer closeRepo()

			rec, err := grant(ctx, repo, email, role, city)
			if err != nil {
				return err
			}
			log.Info("Role granted", "email", rec.Title, "role", rec.Role, "city", rec.Location, "id", rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account")
	cmd.Flags().StringVar(&role, "role", string(models.RoleSuperAdmin), "superadmin or admin")
	cmd.Flags().StringVar(&city, "city", "", "city an admin is scoped to")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// grant writes the role record straight to the store. The dashboard can
// only add admins once a superadmin exists, so the first one is made here.
func grant(ctx context.Context, repo catalog.Repository, email, role, city string) (models.Record, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.Record{}, fmt.Errorf("email is required")
	}
	r := models.Role(role)
	if r != models.RoleSuperAdmin && r != models.RoleAdmin {
		return models.Record{}, fmt.Errorf("role must be %s or %s", models.RoleSuperAdmin, models.RoleAdmin)
	}
	if r == models.RoleAdmin && city == "" {
		return models.Record{}, fmt.Errorf("an admin needs a city")
	}

	existing, err := repo.List(ctx, models.KindAdmins, models.Filter{Title: email})
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to look up %s: %w", email, err)
	}
	if len(existing) == 0 {
		return repo.Create(ctx, models.KindAdmins, models.Record{
			Kind:     models.KindAdmins,
			Title:    email,
			Role:     role,
			Location: city,
		})
	}
	return repo.Update(ctx, models.KindAdmins, existing[0].ID, models.Patch{Role: &role, Location: &city})
}
