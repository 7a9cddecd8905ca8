package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/controller"
	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "listen port (overrides MEDSUPPLY_PORT)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if err := ensureDBDir(cfg.DBPath); err != nil {
				return err
			}

			srv, err := server.New(c.Context, cfg, logger)
			if err != nil {
				logger.Error("failed to create server", slog.String("error", err.Error()))
				return err
			}
			return srv.Start(c.Context)
		},
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "inspect and change supply orders",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list orders, newest first",
				Action: listOrders,
			},
			{
				Name:  "create",
				Usage: "submit a new supply request",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "supply", Required: true},
					&cli.StringFlag{Name: "quantity", Required: true},
					&cli.StringFlag{Name: "priority", Value: model.DefaultPriority},
				},
				Action: createOrder,
			},
			{
				Name:      "status",
				Usage:     "set the status of an order",
				ArgsUsage: "<id> <PENDING|IN_PREPARATION|IN_DELIVERY|DELIVERED>",
				Action:    setStatus,
			},
			{
				Name:      "delete",
				Usage:     "delete an order",
				ArgsUsage: "<id>",
				Action:    deleteOrder,
			},
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "inspect the user profile",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the stored profile",
				Action: showProfile,
			},
		},
	}
}

func listOrders(c *cli.Context) error {
	db, logger, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	state := controller.NewOrderState(c.Context, db, logger)
	if err := state.Refresh(c.Context); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUPPLY\tQUANTITY\tPRIORITY\tSTATUS\tCREATED")
	for _, o := range state.Orders.Get() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.Supply, o.Quantity, o.Priority, o.Status.Label(), o.CreatedDate)
	}
	return tw.Flush()
}

func createOrder(c *cli.Context) error {
	db, logger, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	composer := controller.NewRequestComposer(db, logger)
	composer.SetSupply(c.String("supply"))
	composer.SetQuantity(c.String("quantity"))
	composer.SetPriority(c.String("priority"))

	if !composer.Submit(c.Context) {
		if msg := composer.StatusMessage.Get(); msg != "" {
			return errors.New(msg)
		}
		return apperror.ValidationFailed("supply", "supply and quantity are required")
	}
	fmt.Fprintln(c.App.Writer, composer.StatusMessage.Get())
	return nil
}

func setStatus(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: orders status <id> <status>", 2)
	}
	id, err := parseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	status, ok := model.ParseStatus(c.Args().Get(1))
	if !ok {
		return apperror.ValidationFailed("status", "unknown status "+c.Args().Get(1))
	}

	db, _, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.UpdateStatus(c.Context, id, status); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "order %d is now %s\n", id, status.Label())
	return nil
}

func deleteOrder(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: orders delete <id>", 2)
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	db, _, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteOrder(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "order %d deleted\n", id)
	return nil
}

func showProfile(c *cli.Context) error {
	db, _, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := db.GetProfile(c.Context)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "National ID\t%s\n", p.NationalID)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", p.Phone)
	fmt.Fprintf(tw, "Address\t%s\n", p.Address)
	fmt.Fprintf(tw, "Photo\t%s\n", optional(p.PhotoRef))
	fmt.Fprintf(tw, "Location\t%s\n", optional(p.Location))
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", fmt.Sprintf("invalid order id %q", s))
	}
	return id, nil
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
