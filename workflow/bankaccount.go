package workflow

import (
	"context"
	"fmt"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/infinite"
)

// BankAccount ensures the customer has a linked payout account. The check is
// a live call: account state changes rarely but serving it stale would break
// the transfer.
func BankAccount() Step {
	return Step{Name: StepBankAccount, Run: runBankAccount}
}

func runBankAccount(ctx context.Context, env *Env) error {
	state := env.State

	accounts, err := env.API.GetCustomerAccounts(ctx, env.Plugin.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts.Accounts) > 0 {
		env.Plugin.BankAccountID = accounts.Accounts[0].ID
		if err := env.SavePluginState(ctx); err != nil {
			return err
		}
		state.Mark(StepBankAccount, StatusCompleted)
		return nil
	}

	state.Mark(StepBankAccount, StatusStarted)
	mode := env.presentMode(StepBankAccount)
	state.SetSceneShown(StepBankAccount, true)

	details, err := env.Screens.ShowBankForm(ctx, mode)
	if err != nil {
		if core.IsCancelled(err) {
			state.Mark(StepBankAccount, StatusCancelled)
		}
		return err
	}

	account, err := env.API.AddBankAccount(ctx, infinite.BankAccountParams{
		Type:             "bank_account",
		BankName:         details.BankName,
		AccountName:      details.AccountName,
		AccountOwnerName: details.AccountOwnerName,
		AccountNumber:    details.AccountNumber,
		RoutingNumber:    details.RoutingNumber,
	})
	if err != nil {
		return fmt.Errorf("failed to add bank account: %w", err)
	}

	env.Plugin.BankAccountID = account.ID
	if err := env.SavePluginState(ctx); err != nil {
		return err
	}

	state.Mark(StepBankAccount, StatusCompleted)
	return nil
}
