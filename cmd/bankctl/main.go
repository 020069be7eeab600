// Command bankctl is a terminal consumer of the banking client: it logs
// in, manages accounts, transfers money and prints the notifications the
// sync core produced for each operation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/brkygngr/banking-client/internal/auth"
	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/config"
	"github.com/brkygngr/banking-client/internal/domain/account"
	"github.com/brkygngr/banking-client/internal/domain/page"
	"github.com/brkygngr/banking-client/internal/domain/transaction"
	"github.com/brkygngr/banking-client/internal/runtime"
)

const usage = `usage: bankctl [flags] <command> [args]

commands:
  register <username> <email> <password>
  login <identifier> <password>
  logout
  accounts [number-filter] [name-filter]
  create <name>
  rename <account-id> <name>
  delete <account-id>
  transfer <from-id> <to-id> <amount>
  history <account-id>
`

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "configuration file")
	timeout := flag.Duration("timeout", 30*time.Second, "overall command timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bankctl: %v\n", err)
		os.Exit(1)
	}
	app, err := runtime.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bankctl: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runErr := run(ctx, app, flag.Args())
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "bankctl: %v\n", runErr)
	}
	printNotifications(app)
	if runErr != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, app *runtime.App, args []string) error {
	command, rest := args[0], args[1:]
	switch command {
	case "register":
		if len(rest) != 3 {
			return fmt.Errorf("register needs <username> <email> <password>")
		}
		res, err := app.Auth.Register(ctx, auth.RegisterRequest{
			Username: rest[0],
			Email:    rest[1],
			Password: rest[2],
		})
		if err != nil {
			return err
		}
		fmt.Printf("registered user %s\n", res.UserID)
		return nil

	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("login needs <identifier> <password>")
		}
		if err := app.SignIn(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil

	case "logout":
		app.SignOut()
		fmt.Println("logged out")
		return nil

	case "accounts":
		params := account.ListParams{}
		if len(rest) > 0 {
			params.Number = rest[0]
		}
		if len(rest) > 1 {
			params.Name = rest[1]
		}
		result, err := awaitList(ctx, app, params)
		if err != nil {
			return err
		}
		for _, acct := range result.Content {
			fmt.Printf("%s  %s  %-20s  %.2f\n", acct.ID, acct.Number, acct.Name, acct.Balance)
		}
		fmt.Printf("%d account(s)\n", result.TotalElements)
		return nil

	case "create":
		if len(rest) != 1 {
			return fmt.Errorf("create needs <name>")
		}
		res, err := app.Accounts.Create(ctx, account.CreateRequest{Name: rest[0]})
		if err != nil {
			return err
		}
		fmt.Printf("created account %s\n", res.AccountID)
		return nil

	case "rename":
		if len(rest) != 2 {
			return fmt.Errorf("rename needs <account-id> <name>")
		}
		return app.Accounts.Update(ctx, account.UpdateRequest{ID: rest[0], Name: rest[1]})

	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("delete needs <account-id>")
		}
		return app.Accounts.Delete(ctx, rest[0])

	case "transfer":
		if len(rest) != 3 {
			return fmt.Errorf("transfer needs <from-id> <to-id> <amount>")
		}
		var amount float64
		if _, err := fmt.Sscanf(rest[2], "%f", &amount); err != nil {
			return fmt.Errorf("amount %q is not a number", rest[2])
		}
		result, err := app.Transactions.Transfer(ctx, transaction.TransferRequest{
			From:   rest[0],
			To:     rest[1],
			Amount: amount,
		})
		if err != nil {
			return err
		}
		if result.Status == transaction.StatusFailed {
			fmt.Printf("transfer failed: %s\n", result.Message)
			return nil
		}
		// Balances changed server side; force the account queries fresh.
		app.RefetchAccounts()
		fmt.Println("transfer submitted")
		return nil

	case "history":
		if len(rest) != 1 {
			return fmt.Errorf("history needs <account-id>")
		}
		records, err := awaitHistory(ctx, app, rest[0])
		if err != nil {
			return err
		}
		for _, record := range records {
			fmt.Printf("%s  %s -> %s  %.2f  %s\n",
				record.TransactionDate.Format(time.RFC3339),
				record.From.Number, record.To.Number, record.Amount, record.Status)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// awaitList subscribes to the account list and blocks until the first
// settled snapshot.
func awaitList(ctx context.Context, app *runtime.App, params account.ListParams) (page.Page[account.Account], error) {
	settled := make(chan cache.Result[page.Page[account.Account]], 1)
	sub := app.Accounts.List(ctx, params, func(result cache.Result[page.Page[account.Account]]) {
		if result.IsLoading {
			return
		}
		select {
		case settled <- result:
		default:
		}
	})
	defer sub.Unsubscribe()

	select {
	case result := <-settled:
		if result.IsError {
			return page.Empty[account.Account](), result.Err
		}
		return result.Data, nil
	case <-ctx.Done():
		return page.Empty[account.Account](), ctx.Err()
	}
}

func awaitHistory(ctx context.Context, app *runtime.App, accountID string) ([]transaction.HistoryRecord, error) {
	settled := make(chan cache.Result[[]transaction.HistoryRecord], 1)
	sub := app.Transactions.History(ctx, accountID, func(result cache.Result[[]transaction.HistoryRecord]) {
		if result.IsLoading {
			return
		}
		select {
		case settled <- result:
		default:
		}
	})
	defer sub.Unsubscribe()

	select {
	case result := <-settled:
		if result.IsError {
			return nil, result.Err
		}
		return result.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func printNotifications(app *runtime.App) {
	for _, msg := range app.Notifications.Messages() {
		fmt.Printf("[%s] %s: %s\n", msg.Severity, msg.Header, msg.Body)
	}
}
