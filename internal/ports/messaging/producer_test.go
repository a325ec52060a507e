package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type mockSQSClient struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQSClient) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("id-1")}, m.err
}

func TestProducer_PublishEmail(t *testing.T) {
	client := &mockSQSClient{}
	p := NewSQSProducer(client, "http://localstack:4566/000000000000/email-queue")

	event := ReportEmailEvent{
		Kind:        KindReportEmail,
		RequestedBy: "admin-1",
		StartDate:   "2025-03-01",
		EndDate:     "2025-03-31",
		Recipient:   "rh@graficaos.com",
		Format:      "xlsx",
		RequestedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := p.PublishEmail(context.Background(), event); err != nil {
		t.Fatalf("PublishEmail: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected one message, got %d", len(client.inputs))
	}

	in := client.inputs[0]
	if aws.ToString(in.QueueUrl) != "http://localstack:4566/000000000000/email-queue" {
		t.Errorf("unexpected queue %q", aws.ToString(in.QueueUrl))
	}
	if got := aws.ToString(in.MessageAttributes["EventType"].StringValue); got != "REPORT_EMAIL" {
		t.Errorf("expected EventType=REPORT_EMAIL, got %q", got)
	}

	var decoded ReportEmailEvent
	if err := json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &decoded); err != nil {
		t.Fatalf("body should be json: %v", err)
	}
	if decoded.Recipient != event.Recipient || decoded.UserID != "" {
		t.Errorf("unexpected body %+v", decoded)
	}
}

func TestProducer_PublishEmail_SendFailure(t *testing.T) {
	sendErr := errors.New("queue does not exist")
	p := NewSQSProducer(&mockSQSClient{err: sendErr}, "queue")

	err := p.PublishEmail(context.Background(), AutoClosedEvent{Kind: KindAutoClosed, UserID: "u1"})
	if !errors.Is(err, sendErr) {
		t.Errorf("expected send error, got %v", err)
	}
}

func TestProducer_PublishEmail_Unmarshalable(t *testing.T) {
	client := &mockSQSClient{}
	p := NewSQSProducer(client, "queue")

	if err := p.PublishEmail(context.Background(), map[string]any{"bad": make(chan int)}); err == nil {
		t.Error("expected a marshal error")
	}
	if len(client.inputs) != 0 {
		t.Error("nothing should be sent")
	}
}
