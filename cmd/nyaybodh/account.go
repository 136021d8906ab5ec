package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/render"
)

func emailFlag() cli.Flag {
	return &cli.StringFlag{Name: "email", Usage: "Account email", Required: true}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "password",
		Usage:    "Account password",
		Sources:  cli.EnvVars("NYAYBODH_PASSWORD"),
		Required: true,
	}
}

// withApp runs fn with a CLI composition root.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := newApp(ctx, cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, cmd, a)
	}
}

func printMessage(msg domain.Message, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(msg.Message)
	return nil
}

// AuthCommand creates the auth command.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign up and manage the local session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session",
				Flags: []cli.Flag{emailFlag(), passwordFlag()},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					u, err := a.auth.Login(ctx, cmd.String("email"), cmd.String("password"))
					if err != nil {
						return err
					}
					fmt.Printf("Signed in as %s (%s)\n", u.FullName, u.Role)
					return nil
				}),
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					emailFlag(), passwordFlag(),
					&cli.StringFlag{Name: "name", Usage: "Full name", Required: true},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					t, err := a.auth.Register(ctx, domain.Registration{
						Email:    cmd.String("email"),
						Password: cmd.String("password"),
						FullName: cmd.String("name"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("Account created (user id %d). Check your email for the verification code.\n", t.UserID)
					return nil
				}),
			},
			{
				Name:  "verify",
				Usage: "Verify an account with the emailed code",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "user-id", Required: true},
					&cli.StringFlag{Name: "otp", Required: true},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					return printMessage(a.auth.VerifyOTP(ctx, int(cmd.Int("user-id")), cmd.String("otp")))
				}),
			},
			{
				Name:  "resend",
				Usage: "Resend the verification code",
				Flags: []cli.Flag{emailFlag()},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					return printMessage(a.auth.ResendOTP(ctx, cmd.String("email")))
				}),
			},
			{
				Name:  "forgot",
				Usage: "Request a password reset email",
				Flags: []cli.Flag{emailFlag()},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					return printMessage(a.auth.ForgotPassword(ctx, cmd.String("email")))
				}),
			},
			{
				Name:  "reset",
				Usage: "Set a new password with a reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
					passwordFlag(),
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					return printMessage(a.auth.ResetPassword(ctx, cmd.String("token"), cmd.String("password")))
				}),
			},
			{
				Name:  "logout",
				Usage: "Sign out and forget the session",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
					if err := a.auth.Logout(ctx); err != nil {
						return err
					}
					fmt.Println("Signed out")
					return nil
				}),
			},
			{
				Name:  "profile",
				Usage: "Show the signed-in account",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
					u, err := a.auth.Profile(ctx)
					if err != nil {
						return err
					}
					fmt.Print(render.Users([]domain.User{u}))
					return nil
				}),
			},
			{
				Name:  "refresh",
				Usage: "Exchange the refresh token for a new access token",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
					if err := a.auth.Refresh(ctx); err != nil {
						return err
					}
					fmt.Println("Session refreshed")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "Show the stored session without calling the API",
				Action: withApp(func(_ context.Context, _ *cli.Command, a *app) error {
					u, err := a.auth.Current()
					if err != nil {
						fmt.Println("Not signed in")
						return nil //nolint:nilerr // signed-out is a valid status
					}
					fmt.Printf("Signed in as %s (%s), session %s\n", u.FullName, u.Role, a.session.Path())
					return nil
				}),
			},
		},
	}
}

// AdminCommand creates the admin command.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administer accounts (admin role required)",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "Manage user accounts",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List accounts",
						Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
							users, err := a.admin.List(ctx)
							if err != nil {
								return err
							}
							fmt.Print(render.Users(users))
							return nil
						}),
					},
					{
						Name:  "create",
						Usage: "Create an account",
						Flags: []cli.Flag{
							emailFlag(), passwordFlag(),
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "role", Value: domain.RoleUser},
						},
						Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
							t, err := a.admin.Create(ctx, domain.Registration{
								Email:    cmd.String("email"),
								Password: cmd.String("password"),
								FullName: cmd.String("name"),
								Role:     cmd.String("role"),
							})
							if err != nil {
								return err
							}
							fmt.Printf("Created user %d\n", t.UserID)
							return nil
						}),
					},
					{
						Name:      "update",
						Usage:     "Change an account's name or role",
						ArgsUsage: "<id>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name"},
							&cli.StringFlag{Name: "role"},
						},
						Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
							id, err := userID(cmd)
							if err != nil {
								return err
							}
							var upd domain.UserUpdate
							if cmd.IsSet("name") {
								name := cmd.String("name")
								upd.FullName = &name
							}
							if cmd.IsSet("role") {
								role := cmd.String("role")
								upd.Role = &role
							}
							u, err := a.admin.Update(ctx, id, upd)
							if err != nil {
								return err
							}
							fmt.Print(render.Users([]domain.User{u}))
							return nil
						}),
					},
					{
						Name:      "delete",
						Usage:     "Delete an account",
						ArgsUsage: "<id>",
						Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
							id, err := userID(cmd)
							if err != nil {
								return err
							}
							if err := a.admin.Delete(ctx, id); err != nil {
								return err
							}
							fmt.Printf("Deleted user %d\n", id)
							return nil
						}),
					},
				},
			},
		},
	}
}

func userID(cmd *cli.Command) (int, error) {
	raw, err := requireArg(cmd, "id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}
