package cmd

// RootCmd exposes the root command to external tests.
var RootCmd = rootCmd
