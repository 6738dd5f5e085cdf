package root

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/iostreams/iostreamstest"
)

func TestTopLevelAliases(t *testing.T) {
	tio := iostreamstest.New()
	f := &cmdutil.Factory{IOStreams: tio.IOStreams}
	root := &cobra.Command{Use: "nugetsync"}
	registerAliases(root, f)

	require.Len(t, topLevelAliases, 3)

	for _, alias := range topLevelAliases {
		name := strings.Split(alias.Use, " ")[0]

		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			require.NoError(t, err)
			require.Equal(t, name, cmd.Name())
			require.Equal(t, alias.Use, cmd.Use)
			require.NotEmpty(t, cmd.Short)
			require.NotNil(t, cmd.RunE)
			require.Contains(t, cmd.Example, "nugetsync "+name)
		})
	}
}
