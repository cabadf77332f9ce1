package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForInstruction asks for an editing instruction on in, writing the
// prompt to out. It returns "" when nothing was entered.
func PromptForInstruction(in io.Reader, out io.Writer) string {
	fmt.Fprint(out, "Edit instruction: ")

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		log.Warn().Err(err).Msg("Failed to read instruction")
		return ""
	}
	return strings.TrimSpace(input)
}
