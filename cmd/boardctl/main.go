package main

import (
	"context"
	"log"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vx-labs/boardsync/admin"
	"github.com/vx-labs/boardsync/format"
	"github.com/vx-labs/boardsync/network"
	"google.golang.org/grpc"
)

type APIWrapper struct {
	api *admin.Client
}

func (a *APIWrapper) API() *admin.Client {
	return a.api
}

func logInterceptor(
	ctx context.Context,
	method string,
	req interface{},
	reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	start := time.Now()
	err := invoker(ctx, method, req, reply, cc, opts...)
	if viper.GetBool("debug") {
		log.Printf("DEBUG: invoked RPC method=%s; duration=%s; error=%v", method, time.Since(start), err)
	}
	return err
}

func main() {
	helper := &APIWrapper{}
	var conn *grpc.ClientConn
	var err error
	ctx := context.Background()
	root := &cobra.Command{
		Use: "boardctl",
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if conn != nil {
				conn.Close()
			}
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			endpoint := viper.GetString("endpoint")
			dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			opts := append(network.GRPCClientOptions(), grpc.WithBlock(), grpc.WithChainUnaryInterceptor(logInterceptor))
			conn, err = grpc.DialContext(dialCtx, endpoint, opts...)
			if err != nil {
				log.Fatalf("FATAL: failed to dial %s: %v", endpoint, err)
			}
			helper.api = admin.NewClient(conn)
		},
	}
	root.PersistentFlags().StringP("endpoint", "e", "localhost:7421", "boardsync admin endpoint")
	root.PersistentFlags().Bool("debug", false, "Log every RPC")
	viper.BindPFlag("endpoint", root.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	viper.SetEnvPrefix("BOARDCTL")
	viper.AutomaticEnv()
	root.AddCommand(Connections(ctx, helper))
	root.AddCommand(Journal(ctx, helper))
	root.Execute()
}

func Connections(ctx context.Context, helper *APIWrapper) *cobra.Command {
	c := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"connection", "conn"},
	}
	c.AddCommand(ConnectionsList(ctx, helper))
	c.AddCommand(ConnectionsClose(ctx, helper))
	return c
}

func ConnectionsList(ctx context.Context, helper *APIWrapper) *cobra.Command {
	c := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, args []string) {
			out, err := helper.API().ListConnections(ctx)
			if err != nil {
				log.Printf("ERR: failed to list connections: %v", err)
				return
			}
			sort.SliceStable(out.Connections, func(i, j int) bool {
				return out.Connections[i].Created < out.Connections[j].Created
			})
			tpl := format.ParseTemplate(format.ConnectionTemplate)
			for _, connection := range out.Connections {
				tpl.Execute(os.Stdout, connection)
			}
		},
	}
	return c
}

func ConnectionsClose(ctx context.Context, helper *APIWrapper) *cobra.Command {
	c := &cobra.Command{
		Use:     "close",
		Aliases: []string{"rm", "delete"},
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range args {
				err := helper.API().CloseConnection(ctx, id)
				if err != nil {
					log.Printf("WARN: failed to close connection %s: %v", id, err)
				}
			}
		},
	}
	return c
}

func Journal(ctx context.Context, helper *APIWrapper) *cobra.Command {
	c := &cobra.Command{
		Use:   "journal",
		Short: "List the records replayed to joining participants",
		Run: func(cmd *cobra.Command, args []string) {
			owner, _ := cmd.Flags().GetString("owner")
			records, err := helper.API().ListJournal(ctx, owner)
			if err != nil {
				log.Printf("ERR: failed to list journal: %v", err)
				return
			}
			tpl := format.ParseTemplate(format.RecordTemplate)
			for _, record := range records {
				tpl.Execute(os.Stdout, record)
			}
		},
	}
	c.Flags().StringP("owner", "o", "", "Only list records owned by this connection")
	return c
}
