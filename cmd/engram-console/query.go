package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"engram-console/internal/console"
)

var (
	incSearch string
	incFault  string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the simulation status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.client.Status(a.ctx)
		if err != nil {
			return err
		}
		p := newPrinter(cmd)
		if p.json {
			return p.JSON(st)
		}
		tw := p.table()
		fmt.Fprintf(tw, "Status:\t%s\n", st.Status)
		fmt.Fprintf(tw, "Mode:\t%s\n", st.Mode)
		fmt.Fprintf(tw, "Uptime:\t%s\n", st.Uptime)
		fmt.Fprintf(tw, "Events logged:\t%d\n", st.EventsLogged)
		return tw.Flush()
	},
}

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Show the global risk score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		score, err := a.client.RiskScore(a.ctx)
		if err != nil {
			return err
		}
		p := newPrinter(cmd)
		if p.json {
			return p.JSON(map[string]float64{"risk_score": score})
		}
		c := console.RiskClass(score)
		_, err = fmt.Fprintf(p.out, "Risk score: %s\n", p.class(c, fmt.Sprintf("%.1f (%s)", score, c)))
		return err
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List active agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		agents, err := a.client.Agents(a.ctx)
		if err != nil {
			return err
		}
		p := newPrinter(cmd)
		if p.json {
			return p.JSON(agents)
		}
		if len(agents) == 0 {
			_, err := fmt.Fprintln(p.out, "No active agents")
			return err
		}
		tw := p.table()
		fmt.Fprintln(tw, "AGENT\tTYPE\tBATTERY\tSTATUS\tRISK")
		for _, ag := range agents {
			risk := fmt.Sprintf("%d [%s]", ag.RiskScore, ag.RiskLevel)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ag.AgentID, ag.AgentType, ag.Battery, ag.Status,
				p.class(console.RiskClass(float64(ag.RiskScore)), risk))
		}
		return tw.Flush()
	},
}

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "List recorded incidents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		incidents, err := a.client.Incidents(a.ctx)
		if err != nil {
			return err
		}
		incidents = console.FilterIncidents(incidents, incSearch, incFault)
		p := newPrinter(cmd)
		if p.json {
			return p.JSON(incidents)
		}
		if len(incidents) == 0 {
			_, err := fmt.Fprintln(p.out, "No incidents")
			return err
		}
		tw := p.table()
		fmt.Fprintln(tw, "INCIDENT\tTIMESTAMP\tAGENT\tFAULT\tPREVENTABILITY\tLIABILITY\tSEVERITY")
		for _, inc := range incidents {
			sev := console.SeverityClass(inc.Preventability)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%d%%\t%s\n", inc.IncidentID, inc.Timestamp, inc.AgentID, inc.FaultType,
				inc.Preventability, inc.Liability, p.class(sev, strings.ToUpper(string(sev))))
		}
		return tw.Flush()
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the aggregate risk summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.client.RiskSummary(a.ctx)
		if err != nil {
			return err
		}
		p := newPrinter(cmd)
		if p.json {
			return p.JSON(sum)
		}
		tw := p.table()
		fmt.Fprintf(tw, "Total incidents:\t%d\n", sum.TotalIncidents)
		fmt.Fprintf(tw, "Highest risk agent:\t%s\n", sum.HighestRiskAgent)
		fmt.Fprintf(tw, "Latest event:\t%s\n", sum.LatestEvent)
		return tw.Flush()
	},
}

var incidentCmd = &cobra.Command{
	Use:   "incident <id>",
	Short: "Show the forensic detail of one incident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		raw, err := a.client.IncidentDetail(a.ctx, args[0])
		if err != nil {
			return err
		}
		p := newPrinter(cmd)
		text := console.FormatDetail(raw)
		if p.json {
			return p.JSON(map[string]string{"incident_id": args[0], "detail": text})
		}
		_, err = fmt.Fprintln(p.out, text)
		return err
	},
}

func init() {
	incidentsCmd.Flags().StringVar(&incSearch, "search", "", "Case-insensitive match on incident ID, agent or fault type")
	incidentsCmd.Flags().StringVar(&incFault, "fault", "", "Only show this fault type")
}
