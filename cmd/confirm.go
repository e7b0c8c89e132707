package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks msg on out and reads y/n from in. Anything but yes,
// including EOF, is a no.
func confirm(in io.Reader, out io.Writer, msg string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", msg)
	line, _ := bufio.NewReader(in).ReadString('\n')
	resp := strings.TrimSpace(strings.ToLower(line))
	return resp == "y" || resp == "yes"
}
