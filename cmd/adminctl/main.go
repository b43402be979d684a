// adminctl is the admin console client: it logs in against the site API,
// keeps the session token locally, and checks the session before protected
// work the same way the browser admin area does.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"siteapi/internal/client"
	"siteapi/internal/domain"
)

const requestTimeout = 10 * time.Second

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	flags := flag.NewFlagSet(cmd, flag.ExitOnError)
	addr := flags.String("addr", "http://localhost:8080", "site API base URL")
	email := flags.String("email", "", "admin email (login only)")
	storeDir := flags.String("store", defaultStoreDir(), "directory holding the session token")
	flags.Parse(os.Args[2:])

	store := client.NewTokenStore(*storeDir)
	if store.Availability() != client.StorageAvailable {
		fmt.Fprintln(os.Stderr, "warning: local storage unavailable, the session will not persist")
	}
	api := client.NewAPIClient(*addr, requestTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var err error
	switch cmd {
	case "login":
		err = runLogin(ctx, api, store, *email)
	case "status":
		err = runStatus(ctx, api, store)
	case "logout":
		client.NewSessionGuard(store, api).Logout()
		fmt.Println("logged out (local token discarded)")
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, api *client.APIClient, store *client.TokenStore, email string) error {
	if email == "" {
		return fmt.Errorf("-email is required")
	}
	password, err := readPassword()
	if err != nil {
		return err
	}

	token, expiresAt, err := api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return fmt.Errorf("invalid credentials")
		}
		return err
	}

	if err := store.Save(token); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not persist the session:", err)
	}
	fmt.Printf("logged in as %s, session valid until %s\n", email, expiresAt.Local().Format(time.RFC1123))
	return nil
}

func runStatus(ctx context.Context, api *client.APIClient, store *client.TokenStore) error {
	guard := client.NewSessionGuard(store, api)

	decision := guard.Check(ctx)
	switch decision.State {
	case client.StateAuthenticated:
		fmt.Printf("authenticated as %s until %s\n",
			decision.User.Subject, decision.User.TokenExpiry.Local().Format(time.RFC1123))
		if decision.ExpiresSoon {
			fmt.Println("note: the session expires within 30 minutes, log in again soon")
		}
	default:
		fmt.Println("not authenticated, run: adminctl login -email <email>")
	}
	return nil
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".siteapi"
	}
	return filepath.Join(home, ".siteapi")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: adminctl <command> [flags]

commands:
  login   -email <email> [-addr <url>] [-store <dir>]
  status  [-addr <url>] [-store <dir>]
  logout  [-store <dir>]`)
}
