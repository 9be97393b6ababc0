// Command hashpw prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	hashpw 'correct horse battery staple'
//	echo -n 'correct horse battery staple' | hashpw
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sakif/portfolio/internal/auth"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: hashpw [password]  (reads stdin when no argument is given)")
	}
	flag.Parse()

	password, err := readPassword(flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(2)
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty password")
	}
	return line, nil
}
