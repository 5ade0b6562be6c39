package cli

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Connect to a server as a line client",
		Long: `client opens a TCP connection to a skirmish server and relays lines
between stdin and the socket. The connection closes when the server sends
the DISCONNECT sentinel or stdin ends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			done := make(chan struct{})

			go func() {
				defer close(done)
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					line := scanner.Text()
					fmt.Fprintln(cmd.OutOrStdout(), line)
					if strings.HasSuffix(line, "DISCONNECT") {
						return
					}
				}
			}()

			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					if _, err := fmt.Fprintln(conn, scanner.Text()); err != nil {
						return
					}
				}
				conn.Close()
			}()

			<-done
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Server address")

	return cmd
}
