package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	// Remote stores
	s3Region       string
	s3Endpoint     string
	s3PathStyle    bool
	minioEndpoint  string
	minioAccessKey string
	minioSecretKey string
	minioSecure    bool

	// inspect / list
	jsonOutput bool

	// bench
	benchRows        int
	benchWorkers     int
	benchBlockSize   int
	benchMemoryLimit int64
	benchSnapshot    string
	benchCompression string
	verbose          bool

	rootCmd = &cobra.Command{
		Use:           "soactl",
		Short:         "Inspect soa table snapshots and benchmark tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect <file|s3://bucket/key|minio://bucket/key>",
		Short: "Print the summary of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect, // Defined in inspect.go
	}

	listCmd = &cobra.Command{
		Use:   "list <dir|s3://bucket/prefix|minio://bucket/prefix>",
		Short: "List the snapshots in a store",
		Args:  cobra.ExactArgs(1),
		RunE:  runList, // Defined in inspect.go
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run a concurrent acquire/set/get/release workload",
		Args:  cobra.NoArgs,
		RunE:  runBench, // Defined in bench.go
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&s3Region, "s3-region", "", "AWS region (default from the AWS configuration)")
	pf.StringVar(&s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	pf.BoolVar(&s3PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	pf.StringVar(&minioEndpoint, "minio-endpoint", "localhost:9000", "MinIO endpoint host:port")
	pf.StringVar(&minioAccessKey, "minio-access-key", "minioadmin", "MinIO access key")
	pf.StringVar(&minioSecretKey, "minio-secret-key", "minioadmin", "MinIO secret key")
	pf.BoolVar(&minioSecure, "minio-secure", false, "use HTTPS for MinIO")

	inspectCmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")

	benchCmd.Flags().IntVar(&benchRows, "rows", 1_000_000, "rows to acquire")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 4, "concurrent element readers and writers")
	benchCmd.Flags().IntVar(&benchBlockSize, "block-size", 1024, "rows per block")
	benchCmd.Flags().Int64Var(&benchMemoryLimit, "memory-limit", 0, "block memory budget in bytes (0 = unlimited)")
	benchCmd.Flags().StringVar(&benchSnapshot, "snapshot", "", "save a snapshot of the final table to this location")
	benchCmd.Flags().StringVar(&benchCompression, "compression", "zstd", "snapshot compression: none, lz4 or zstd")
	benchCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log structural events")

	rootCmd.AddCommand(inspectCmd, listCmd, benchCmd)
}
