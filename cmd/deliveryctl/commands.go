package main

import (
	"fmt"

	"github.com/BearBump/DeliveryWatch/internal/crypto/aescbc"
	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/BearBump/DeliveryWatch/internal/storage/pgshipment"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCycleCommand(env ctlEnv, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run one reconcile cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := env.openReconciler(root.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			rep := r.RunCycle(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "candidates=%d processed=%d patched=%d notified=%d errors=%d\n",
				rep.Candidates, rep.Processed, rep.Patched, rep.Notified, rep.Errors)
			if rep.Aborted {
				return errors.New("cycle interrupted")
			}
			return nil
		},
	}
}

type trackOptions struct {
	owner          string
	carrierID      string
	carrierName    string
	trackingNumber string
}

func newTrackCommand(env ctlEnv, root *rootOptions) *cobra.Command {
	opts := &trackOptions{}
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Start tracking a shipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := env.openStore(root.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := st.CreateShipment(cmd.Context(), models.ShipmentCreateInput{
				Owner:          opts.owner,
				CarrierID:      opts.carrierID,
				CarrierName:    opts.carrierName,
				TrackingNumber: opts.trackingNumber,
			})
			if err != nil {
				return err
			}
			state := rec.StateID
			if state == "" {
				state = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tracking %s/%s via %s (state %s)\n", rec.Owner, rec.TrackingNumber, rec.CarrierID, state)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&opts.carrierID, "carrier", "", "carrier id, e.g. kr.cjlogistics (required)")
	cmd.Flags().StringVar(&opts.carrierName, "carrier-name", "", "carrier display name used in notifications")
	cmd.Flags().StringVar(&opts.trackingNumber, "number", "", "tracking number (required)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("carrier")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}

func newUntrackCommand(env ctlEnv, root *rootOptions) *cobra.Command {
	var owner, number string
	cmd := &cobra.Command{
		Use:   "untrack",
		Short: "Stop tracking a shipment and delete its record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := env.openStore(root.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := st.DeleteShipment(cmd.Context(), owner, number); err != nil {
				if errors.Is(err, pgshipment.ErrNotFound) {
					return fmt.Errorf("no shipment %s for owner %s", number, owner)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "untracked %s/%s\n", owner, number)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&number, "number", "", "tracking number (required)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}

func newContactCommand(env ctlEnv, root *rootOptions) *cobra.Command {
	var owner, nickname, phone string
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Store an owner's nickname and encrypted phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := aescbc.New([]byte(root.cfg.Crypto.ContactKey))
			if err != nil {
				return errors.Wrap(err, "contact key")
			}
			enc := ""
			if phone != "" {
				if enc, err = c.Encrypt(phone); err != nil {
					return err
				}
			}

			st, closeFn, err := env.openStore(root.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := st.UpsertContact(cmd.Context(), pgshipment.StoredContact{
				Owner:          owner,
				Nickname:       nickname,
				PhoneEncrypted: enc,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "contact saved for %s\n", owner)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&nickname, "nickname", "", "name used in notification text")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number; empty clears it")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
