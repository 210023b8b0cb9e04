package main

import (
	"fmt"
	"os"

	"storefront/internal/config"

	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.FromEnv()
	if err := newCLI(cfg).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cartctl:", err)
		os.Exit(1)
	}
}

func newCLI(cfg config.Config) *cli.App {
	r := &runner{cfg: cfg}
	return &cli.App{
		Name:  "cartctl",
		Usage: "manage the storefront cart and checkout from a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Usage: "commerce API base URL", Value: cfg.APIBaseURL, EnvVars: []string{"API_BASE_URL"}},
			&cli.StringFlag{Name: "storage", Usage: "client storage file or postgres DSN", Value: cfg.StorageDSN, EnvVars: []string{"STORAGE_DSN"}},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
		},
		Before: r.setup,
		After:  r.teardown,
		Commands: []*cli.Command{
			{
				Name:  "cart",
				Usage: "show and change the cart",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "show the cart", Action: r.cartShow},
					{
						Name:      "add",
						Usage:     "add a product",
						ArgsUsage: "PRODUCT_ID",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Value: 1},
							&cli.StringFlag{Name: "variation", Usage: "product variation id"},
						},
						Action: r.cartAdd,
					},
					{Name: "remove", Usage: "remove a line item", ArgsUsage: "ITEM_ID", Action: r.cartRemove},
					{Name: "set", Usage: "set the quantity of a line item", ArgsUsage: "ITEM_ID QUANTITY", Action: r.cartSet},
					{Name: "inc", Usage: "increase a line item by one", ArgsUsage: "ITEM_ID", Action: r.cartStep(1)},
					{Name: "dec", Usage: "decrease a line item by one", ArgsUsage: "ITEM_ID", Action: r.cartStep(-1)},
				},
			},
			{
				Name:  "coupons",
				Usage: "list and apply coupons",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "list coupons for the cart", Action: r.couponsList},
					{Name: "apply", Usage: "apply a coupon and show the discount", ArgsUsage: "CODE", Action: r.couponsApply},
				},
			},
			{
				Name:  "checkout",
				Usage: "review and place the order",
				Subcommands: []*cli.Command{
					{
						Name:   "summary",
						Usage:  "show checkout totals",
						Flags:  []cli.Flag{zoneFlag(), &cli.StringFlag{Name: "coupon"}},
						Action: r.checkoutSummary,
					},
					{
						Name:  "place",
						Usage: "place the order",
						Flags: []cli.Flag{
							zoneFlag(),
							&cli.StringFlag{Name: "coupon"},
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "email"},
							&cli.StringFlag{Name: "phone", Required: true},
							&cli.StringFlag{Name: "address", Required: true},
							&cli.StringFlag{Name: "payment", Value: "cod", Usage: "cod or online"},
						},
						Action: r.checkoutPlace,
					},
				},
			},
			{
				Name:  "order",
				Usage: "look up placed orders",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "show an order", ArgsUsage: "ORDER_NUMBER", Action: r.orderShow},
				},
			},
		},
	}
}

func zoneFlag() cli.Flag {
	return &cli.StringFlag{Name: "zone", Value: "inside", Usage: "delivery zone: inside or outside"}
}
