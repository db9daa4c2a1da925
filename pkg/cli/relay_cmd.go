package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"redshift-ddl/internal/domain"
)

// connectionFlags are shared by extract and execute.
type connectionFlags struct {
	host   string
	port   int
	db     string
	user   string
	secret string
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "", "Warehouse host (also the first storage key segment)")
	cmd.Flags().IntVar(&f.port, "port", 0, "Warehouse port (0 uses the dialect default, 5439 for Redshift)")
	cmd.Flags().StringVar(&f.db, "db", "", "Database name")
	cmd.Flags().StringVar(&f.user, "user", "", "Database user")
	cmd.Flags().StringVar(&f.secret, "password-secret", "", "Secret reference for the password (Secrets Manager ARN or env:NAME)")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("user")
}

func (f *connectionFlags) descriptor() domain.ConnectionDescriptor {
	return domain.ConnectionDescriptor{
		Host:          f.host,
		Port:          f.port,
		Database:      f.db,
		User:          f.user,
		CredentialRef: f.secret,
	}
}

func newExtractCmd(rt *runtime) *cobra.Command {
	var (
		conn    connectionFlags
		schemas []string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Save the table DDL of one or more schemas to the DDL bucket",
		Example: `  ddlctl extract --host legacy.example.com --db dev --user admin \
    --password-secret arn:aws:secretsmanager:eu-west-1:123456789012:secret:legacy \
    --schema sales --schema finance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := domain.WithInvocationID(cmd.Context(), domain.NewID())
			svc, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer closeServices(svc, &err)
			if svc.Extractor == nil {
				return errExtractDisabled
			}

			out, err := svc.Extractor.Extract(ctx, conn.descriptor(), schemas)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "table" {
				return printTable(cmd.OutOrStdout(), [2]string{"SCHEMA", "URI"}, out)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	conn.register(cmd)
	cmd.Flags().StringArrayVar(&schemas, "schema", nil, "Schema to extract (repeatable)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func newExecuteCmd(rt *runtime) *cobra.Command {
	var (
		conn connectionFlags
		uris []string
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute stored DDL documents against a warehouse, in order",
		Example: `  ddlctl execute --host new.example.com --db dev --user admin \
    --password-secret env:TARGET_PASSWORD \
    --uri s3://ddl-bucket/legacy.example.com/dev/sales_ddl.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := domain.WithInvocationID(cmd.Context(), domain.NewID())
			svc, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer closeServices(svc, &err)

			marker, err := svc.Replayer.Execute(ctx, conn.descriptor(), uris)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "table" {
				return printTable(cmd.OutOrStdout(), [2]string{"RESULT", "URIS"}, map[string]string{
					marker.Message: strconv.Itoa(len(uris)),
				})
			}
			return printJSON(cmd.OutOrStdout(), marker)
		},
	}
	conn.register(cmd)
	cmd.Flags().StringArrayVar(&uris, "uri", nil, "Stored DDL reference scheme://bucket/key (repeatable, executed in order)")
	_ = cmd.MarkFlagRequired("uri")
	return cmd
}
