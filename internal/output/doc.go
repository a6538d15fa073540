// Package output provides terminal and JSON output for the chatmd CLI.
//
// # Printer
//
// Every command writes through a Printer, which switches between
// human-readable and JSON output based on the --json flag:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, output.IsTTY(cmd.OutOrStdout()))
//	printer.Success(map[string]any{"message": "Converted 12 of 14 conversations"})
//	printer.Table([]string{"#", "Date", "Title"}, rows)
//
// Human output is styled with lipgloss. Styles are cleared when the
// writer is not a terminal or --color never is given.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0: conversion finished
//	output.ExitUserError   // 1: bad flags, missing input, bad config
//	output.ExitSystemError // 2: unreadable export, unwritable output, network failure
//
// Errors built with NewUserError / NewSystemError carry their code into
// both the JSON error payload and the process exit status.
package output
