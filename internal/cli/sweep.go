package cli

import (
	"fmt"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/metrics"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/workflow"
	"github.com/spf13/cobra"
)

var sweepCommand = &cobra.Command{
	Use:     "sweep",
	GroupID: "groupsweep",
	Short:   "Delete every resource in a resource group",
	Long: `Lists the compute instances of the resource group and deletes them in batches.
Once all instances are gone, the capacity allocations of the group are deleted the same way.
The run stops at the first resource that cannot be deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render(fmt.Sprintf("GroupSweep - %s", options.ResourceGroup)))

		var recorder *metrics.Recorder
		if options.PushgatewayURL != "" {
			recorder = metrics.NewRecorder()
		}

		return workflow.RunResourceGroupSweep(options, recorder)
	},
}

func init() {
	rootCommand.AddCommand(sweepCommand)
}
