package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	numParties int
	fracbits   int
	ringBits   int

	rootCmd = &cobra.Command{
		Use:   "semi2k-cli",
		Short: "CLI tool for the Semi2k privacy-preserving MPC protocol",
		Long: `A CLI tool for exercising the Semi2k additive secret sharing
protocol over fixed-point numeric arrays: run a demo computation in-process,
benchmark protocol throughput, or serve one party of a distributed
computation over TCP.`,
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run a small fixed-point computation across simulated parties",
		RunE:  runDemo,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmark mul_ss throughput over an in-process network",
		RunE:  runBench,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve one party of a distributed Semi2k computation over TCP",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().IntVarP(&numParties, "parties", "n", 3, "Number of parties")
	rootCmd.PersistentFlags().IntVar(&fracbits, "fracbits", 16, "Fixed-point fractional bits")
	rootCmd.PersistentFlags().IntVar(&ringBits, "ring-bits", 64, "Ring bit width (K in Z/2^K)")

	benchCmd.Flags().Int("iterations", 1000, "Number of mul_ss calls to time")

	serveCmd.Flags().String("self", "", "This party's id (required)")
	serveCmd.Flags().StringSlice("endpoints", nil, "host:port for every party, indexed by party id (required)")
	serveCmd.MarkFlagRequired("self")
	serveCmd.MarkFlagRequired("endpoints")

	rootCmd.AddCommand(demoCmd, benchCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
