package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/market"
)

var accountFlag = &cli.StringFlag{
	Name:  "account",
	Usage: "account to inspect, defaults to the signing account",
}

var tokenFlag = &cli.StringFlag{
	Name:     "token",
	Usage:    "token identifier (metadata CID)",
	Required: true,
}

var accountCmd = &cli.Command{
	Name:  "account",
	Usage: "print the signing account",
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		_, err := fmt.Fprintln(e.out, e.identity.Account)
		return err
	},
}

var createdCmd = &cli.Command{
	Name:  "created",
	Usage: "list the tokens minted by an account",
	Flags: []cli.Flag{accountFlag},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		records, err := e.market.GetByCreator(c.Context, e.identity, e.accountOrSelf(c))
		if err != nil {
			return err
		}
		return e.print(records)
	},
}

var ownedCmd = &cli.Command{
	Name:  "owned",
	Usage: "list the tokens an account holds",
	Flags: []cli.Flag{accountFlag},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		records, err := e.market.GetByOwner(c.Context, e.identity, e.accountOrSelf(c))
		if err != nil {
			return err
		}
		return e.print(records)
	},
}

var receivedCmd = &cli.Command{
	Name:  "received",
	Usage: "list the transfers waiting to be accepted",
	Flags: []cli.Flag{accountFlag},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		records, err := e.market.GetReceived(c.Context, e.identity, e.accountOrSelf(c))
		if err != nil {
			return err
		}
		return e.print(records)
	},
}

var historyCmd = &cli.Command{
	Name:  "history",
	Usage: "list the marketplace events of an account, newest first",
	Flags: []cli.Flag{accountFlag},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		events, err := e.market.GetHistory(c.Context, e.identity, e.accountOrSelf(c))
		if err != nil {
			return err
		}
		return e.print(events)
	},
}

var marketplaceCmd = &cli.Command{
	Name:  "marketplace",
	Usage: "list live listings across the network",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "maximum number of listings",
			Value: 50,
		},
	},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		listings, err := e.market.GetMarketplace(c.Context, e.identity, c.Int("limit"))
		if err != nil {
			return err
		}
		return e.print(listings)
	},
}

var listingCmd = &cli.Command{
	Name:      "listing",
	Usage:     "show the live listing of a token",
	ArgsUsage: "<token>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("expected exactly one token identifier", 2)
		}
		e := getEnv(c)
		listing, err := e.market.GetListing(c.Context, e.identity, domain.TokenID(c.Args().First()))
		if err != nil {
			return err
		}
		return e.print(listing)
	},
}

var listCmd = &cli.Command{
	Name:  "list",
	Usage: "list a held token for sale",
	Flags: []cli.Flag{
		tokenFlag,
		&cli.StringFlag{Name: "price", Usage: "price in XLM, up to 7 decimals", Required: true},
	},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		return e.printResult(e.market.List(c.Context, e.identity, domain.TokenID(c.String("token")), c.String("price")))
	},
}

var delistCmd = &cli.Command{
	Name:  "delist",
	Usage: "withdraw a listing",
	Flags: []cli.Flag{tokenFlag},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		return e.printResult(e.market.Delist(c.Context, e.identity, domain.TokenID(c.String("token"))))
	},
}

var buyCmd = &cli.Command{
	Name:  "buy",
	Usage: "pay the seller and claim a listed token",
	Flags: []cli.Flag{
		tokenFlag,
		&cli.StringFlag{Name: "price", Usage: "expected listing price in XLM", Required: true},
	},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		return e.printResult(e.market.Buy(c.Context, e.identity, domain.TokenID(c.String("token")), c.String("price")))
	},
}

var transferCmd = &cli.Command{
	Name:  "transfer",
	Usage: "mark a held token for another account",
	Flags: []cli.Flag{
		tokenFlag,
		&cli.StringFlag{Name: "to", Usage: "destination account", Required: true},
	},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		return e.printResult(e.market.Transfer(c.Context, e.identity, domain.TokenID(c.String("token")), c.String("to")))
	},
}

var acceptCmd = &cli.Command{
	Name:  "accept",
	Usage: "accept a transfer marked for the signing account",
	Flags: []cli.Flag{
		tokenFlag,
		&cli.StringFlag{Name: "from", Usage: "sending account", Required: true},
	},
	Action: func(c *cli.Context) error {
		e := getEnv(c)
		return e.printResult(e.market.AcceptTransfer(c.Context, e.identity, domain.TokenID(c.String("token")), c.String("from")))
	},
}

var mintCmd = &cli.Command{
	Name:  "mint",
	Usage: "pin an image with its metadata and record the mint",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "token name", Required: true},
		&cli.StringFlag{Name: "description", Usage: "token description"},
		&cli.PathFlag{Name: "image", Usage: "image file to upload", Required: true},
		&cli.StringSliceFlag{Name: "attribute", Usage: "trait as trait_type=value, repeatable"},
	},
	Action: func(c *cli.Context) error {
		e := getEnv(c)

		attributes, err := parseAttributes(c.StringSlice("attribute"))
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}

		path := c.Path("image")
		image, err := e.fs.ReadFileLimit(path, e.maxImageBytes)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		result, tokenID, err := e.market.Mint(c.Context, e.identity, market.MintRequest{
			Name:        c.String("name"),
			Description: c.String("description"),
			ImageName:   filepath.Base(path),
			Image:       image,
			Attributes:  attributes,
		})
		if err != nil {
			return err
		}
		return e.print(struct {
			TokenID domain.TokenID   `json:"tokenId"`
			Result  *domain.TxResult `json:"result"`
		}{tokenID, result})
	},
}

// printResult prints a mutation result, failing the command when the mutation failed
func (e *env) printResult(result *domain.TxResult, err error) error {
	if err != nil {
		return err
	}
	return e.print(result)
}

// parseAttributes parses trait_type=value pairs
func parseAttributes(pairs []string) ([]domain.Attribute, error) {
	attributes := make([]domain.Attribute, 0, len(pairs))
	for _, pair := range pairs {
		trait, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(trait) == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected trait_type=value", pair)
		}
		attributes = append(attributes, domain.Attribute{
			TraitType: strings.TrimSpace(trait),
			Value:     strings.TrimSpace(value),
		})
	}
	return attributes, nil
}
