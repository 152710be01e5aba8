package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/cartsync"
	"github.com/spf13/cobra"
)

type runtimeFn func() *runtime

func newLoginCmd(get runtimeFn) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and merge the guest cart into your account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := get()
			if password == "" {
				password = rt.cfg.Password
			}
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				profile, err := rt.session.Login(ctx, email, password)
				if err != nil {
					return explainLogin(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", profile.Username, profile.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or CARTCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(get runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; the cart on this machine is emptied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				if err := rt.session.Logout(ctx); err != nil {
					return explain(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newAddCmd(get runtimeFn) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add <listingId>",
		Short: "Add a listing to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				listing, err := rt.catalog.GetListing(ctx, args[0])
				if err != nil {
					return explain(err)
				}
				if err := rt.load(ctx); err != nil {
					return explain(err)
				}
				if err := rt.engine.AddToCart(ctx, listing, qty); err != nil {
					return explain(err)
				}
				return printCart(cmd.OutOrStdout(), rt)
			})
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")
	return cmd
}

func newUpdateCmd(get runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "update <listingId> <quantity>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				if err := rt.load(ctx); err != nil {
					return explain(err)
				}
				if err := rt.engine.UpdateQuantity(ctx, args[0], qty); err != nil {
					return explain(err)
				}
				return printCart(cmd.OutOrStdout(), rt)
			})
		},
	}
}

func newRemoveCmd(get runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <listingId>",
		Short: "Remove a listing from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				if err := rt.load(ctx); err != nil {
					return explain(err)
				}
				if err := rt.engine.RemoveFromCart(ctx, args[0]); err != nil {
					return explain(err)
				}
				return printCart(cmd.OutOrStdout(), rt)
			})
		},
	}
}

func newSelectCmd(get runtimeFn) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "select <listingId>",
		Short: "Include a line in checkout (or exclude it with --off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				if err := rt.load(ctx); err != nil {
					return explain(err)
				}
				if err := rt.engine.SetSelected(ctx, args[0], !off); err != nil {
					return explain(err)
				}
				return printCart(cmd.OutOrStdout(), rt)
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "exclude the line from checkout")
	return cmd
}

func newShowCmd(get runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				if err := rt.load(ctx); err != nil {
					return explain(err)
				}
				return printCart(cmd.OutOrStdout(), rt)
			})
		},
	}
}

func newClearCmd(get runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := get()
			return rt.do(cmd.Context(), func(ctx context.Context) error {
				if err := rt.engine.EmptyCart(ctx); err != nil {
					return explain(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty")
				return nil
			})
		},
	}
}

func printCart(w io.Writer, rt *runtime) error {
	st := rt.engine.State()
	fmt.Fprintf(w, "Cart (%s)\n", describeMode(rt))
	if len(st.Items) == 0 {
		fmt.Fprintln(w, "  no items")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  LISTING\tPRODUCT\tSTORE\tPRICE\tQTY\tSTOCK\tTOTAL\tCHECKOUT")
	for _, it := range st.Items {
		checkout := "yes"
		if !it.IsSelected {
			checkout = "no"
		}
		if it.IsOutOfStock {
			checkout = "out of stock"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%.2f\t%d\t%d\t%.2f\t%s\n",
			it.ListingID, it.ProductName, it.StoreName, it.UnitPrice, it.Quantity, it.AvailableStock, it.TotalPrice, checkout)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Items: %d  Selected total: %.2f\n", rt.engine.TotalQuantity(), rt.engine.TotalSelectedPrice())
	if st.Summary != nil {
		fmt.Fprintf(w, "Server total: %.2f (discounts %.2f)\n", st.Summary.Total, st.Summary.DiscountTotal)
	}
	return nil
}

// explain turns engine errors into messages fit for a terminal.
// explainLogin is explain for a sign-in attempt, where a rejected
// credential means a wrong email or password rather than an old session.
func explainLogin(err error) error {
	if errors.Is(err, cartsync.ErrUnauthorized) {
		return errors.New("invalid email or password")
	}
	return explain(err)
}

func explain(err error) error {
	var verr *cartsync.ValidationError
	var nerr *cartsync.NetworkError
	switch {
	case errors.As(err, &verr):
		if verr.Message != "" {
			return errors.New(verr.Message)
		}
		return err
	case errors.Is(err, cartsync.ErrUnauthorized):
		return errors.New("your session is no longer valid, run `cartctl login` again")
	case errors.As(err, &nerr):
		return fmt.Errorf("marketplace API unreachable, try again: %w", nerr.Err)
	default:
		return err
	}
}
