// register.go implements optional Route 53 self-registration for the
// first node of a ring, so later joiners in "dns" mode can find it
// without an operator hand-typing an address.
package bootstrap

import (
	"context"
	"fmt"

	"chordring/internal/config"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Register upserts an A record in the configured hosted zone pointing
// cfg.Record at selfAddr, so that a subsequent "dns" bootstrap resolves
// to this node. It is a no-op unless cfg.Register.Enabled.
func Register(ctx context.Context, cfg config.BootstrapConfig, selfAddr string) error {
	if !cfg.Register.Enabled {
		return nil
	}
	if cfg.Register.HostedZone == "" || cfg.Register.Record == "" {
		return fmt.Errorf("bootstrap: register.enabled requires hostedZone and record")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	client := route53.NewFromConfig(awsCfg)

	_, err = client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: &cfg.Register.HostedZone,
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{
				{
					Action: r53types.ChangeActionUpsert,
					ResourceRecordSet: &r53types.ResourceRecordSet{
						Name: &cfg.Register.Record,
						Type: r53types.RRTypeA,
						TTL:  int64Ptr(30),
						ResourceRecords: []r53types.ResourceRecord{
							{Value: &selfAddr},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("route53 upsert %s -> %s: %w", cfg.Register.Record, selfAddr, err)
	}
	return nil
}

func int64Ptr(v int64) *int64 { return &v }
