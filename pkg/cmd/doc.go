// Package cmd contains the starkeeper CLI commands, wired together through
// an fx module. Each command constructor returns a *cli.Command contributed
// to the "commands" group; Run assembles them into the root application.
package cmd
