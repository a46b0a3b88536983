package commands

import (
	"context"
	"fmt"
	"log/slog"

	userUsecase "github.com/allisson/permguard/internal/user/usecase"
)

// RunCreateUser registers a user. When password is empty it is read from the
// command input instead, so it does not end up in shell history.
func RunCreateUser(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	name string,
	email string,
	password string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating user", slog.String("email", email))

	if password == "" {
		var err error
		password, err = promptLine(io, "Enter password: ")
		if err != nil {
			return err
		}
	}

	user, err := userUseCase.RegisterUser(ctx, userUsecase.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		err = writeJSON(io.Writer, map[string]any{
			"id":         user.ID.String(),
			"name":       user.Name,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		})
	} else {
		_, err = fmt.Fprintf(io.Writer, "User created successfully\nID: %s\nEmail: %s\n", user.ID, user.Email)
	}
	if err != nil {
		return err
	}

	logger.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// RunRotateSecurityStamp gives the user a new security stamp. Every token the
// user holds stops authenticating and cached permission sets are bypassed.
func RunRotateSecurityStamp(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	email string,
	io IOTuple,
) error {
	user, err := userUseCase.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := userUseCase.RotateSecurityStamp(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to rotate security stamp: %w", err)
	}

	if _, err := fmt.Fprintf(io.Writer, "Security stamp rotated for %s\n", user.Email); err != nil {
		return err
	}

	logger.Info("security stamp rotated", slog.String("user_id", user.ID.String()))
	return nil
}
