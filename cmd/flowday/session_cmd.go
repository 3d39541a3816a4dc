package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Flowday backend",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	RunE:  runWhoami,
}

var (
	loginEmail    string
	loginPassword string
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (read from FLOWDAY_PASSWORD or stdin when empty)")
	loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("FLOWDAY_PASSWORD")
	}
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	client := newClient()
	s, err := openSession(client)
	if err != nil {
		return err
	}
	user, err := s.Login(cmd.Context(), client, loginEmail, password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", user.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession(newClient())
	if err != nil {
		return err
	}
	if err := s.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := openSession(newClient())
	if err != nil {
		return err
	}
	u := s.User()
	if u == nil {
		return session.ErrNotAuthenticated
	}
	fmt.Printf("%s <%s>\n", u.DisplayName(), u.Email)
	fmt.Printf("ID: %s\n", u.ID)
	return nil
}
