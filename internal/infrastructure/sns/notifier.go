package sns

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/MerrickKing/walrusbot/internal/config"
)

// Notifier publishes ops notifications (completed verifications, repeated
// mail failures) to an SNS topic. Best-effort: callers log failures and
// never surface them to chat users.
type Notifier struct {
	client   *sns.Client
	topicARN string
}

func NewNotifier(cfg *config.Config) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Notifier{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

func (n *Notifier) Notify(ctx context.Context, subject, message string) error {
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &n.topicARN,
		Subject:  &subject,
		Message:  &message,
	})
	return err
}
