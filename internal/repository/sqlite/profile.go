package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

// GetProfile returns the profile row. If the row has gone missing the
// seed values are returned instead; they are not written back.
func (db *DB) GetProfile(ctx context.Context) (model.UserProfile, error) {
	var p model.UserProfile
	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &p,
			`SELECT id, name, national_id, email, phone, address, photo_ref, location
			 FROM user_profile WHERE id = ?`,
			model.ProfileID,
		)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			db.logger.Warn("profile row missing, using defaults")
			return model.DefaultProfile(), nil
		}
		return model.UserProfile{}, fmt.Errorf("sqlite: getting profile: %w", err)
	}
	return p, nil
}

// UpdateProfile overwrites every mutable field of the profile row. The id
// carried by profile is ignored; there is only one row.
func (db *DB) UpdateProfile(ctx context.Context, profile model.UserProfile) error {
	var affected int64
	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx,
			`UPDATE user_profile
			 SET name = ?, national_id = ?, email = ?, phone = ?, address = ?, photo_ref = ?, location = ?
			 WHERE id = ?`,
			profile.Name,
			profile.NationalID,
			profile.Email,
			profile.Phone,
			profile.Address,
			profile.PhotoRef,
			profile.Location,
			model.ProfileID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: updating profile: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("profile", model.ProfileID)
	}
	return nil
}
