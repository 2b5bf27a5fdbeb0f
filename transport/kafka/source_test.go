package kafka

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/transport"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}

func (m *mockReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockReader) Close() error {
	return m.Called().Error(0)
}

func TestSource_ReceiveAndAck(t *testing.T) {
	r := new(mockReader)
	msg := kafka.Message{Topic: "sensors", Partition: 1, Offset: 7, Value: []byte(`{"a":1}`)}
	r.On("FetchMessage", mock.Anything).Return(msg, nil).Once()
	r.On("CommitMessages", mock.Anything, []kafka.Message{msg}).Return(nil).Once()

	src := NewSourceFromReader(r)
	d, err := src.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sensors", d.Subject)
	assert.Equal(t, []byte(`{"a":1}`), d.Body)

	require.NoError(t, d.Ack(context.Background()))
	r.AssertExpectations(t)
}

func TestSource_NackDoesNotCommit(t *testing.T) {
	r := new(mockReader)
	r.On("FetchMessage", mock.Anything).Return(kafka.Message{Topic: "t"}, nil).Once()

	d, err := NewSourceFromReader(r).Receive(context.Background())
	require.NoError(t, err)
	require.NoError(t, d.Nack(context.Background(), errors.New("store down")))
	r.AssertNotCalled(t, "CommitMessages", mock.Anything, mock.Anything)
}

func TestSource_SubjectHeader(t *testing.T) {
	r := new(mockReader)
	r.On("FetchMessage", mock.Anything).Return(kafka.Message{
		Topic:   "ingest",
		Headers: []kafka.Header{{Key: "trace", Value: []byte("x")}, {Key: SubjectHeader, Value: []byte("quakes.eu")}},
	}, nil).Once()

	d, err := NewSourceFromReader(r).Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "quakes.eu", d.Subject)
}

func TestSource_EOF(t *testing.T) {
	r := new(mockReader)
	r.On("FetchMessage", mock.Anything).Return(kafka.Message{}, io.EOF).Once()
	r.On("Close").Return(nil).Once()

	src := NewSourceFromReader(r)
	_, err := src.Receive(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, src.Close())
}

func TestSource_DrivesDispatcher(t *testing.T) {
	r := new(mockReader)
	m1 := kafka.Message{Topic: "t", Offset: 1, Value: []byte("ok")}
	m2 := kafka.Message{Topic: "t", Offset: 2, Value: []byte("fail")}
	r.On("FetchMessage", mock.Anything).Return(m1, nil).Once()
	r.On("FetchMessage", mock.Anything).Return(m2, nil).Once()
	r.On("FetchMessage", mock.Anything).Return(kafka.Message{}, io.EOF).Once()
	r.On("CommitMessages", mock.Anything, []kafka.Message{m1}).Return(nil).Once()

	d := &transport.Dispatcher{
		Source: NewSourceFromReader(r),
		Handler: transport.HandlerFunc(func(_ context.Context, msg transport.Message) error {
			if string(msg.Body) == "fail" {
				return errors.New("boom")
			}
			return nil
		}),
	}
	require.NoError(t, d.Run(context.Background()))
	r.AssertExpectations(t)
}

func TestNewSource_Validation(t *testing.T) {
	_, err := NewSource(Config{})
	assert.Error(t, err)
	_, err = NewSource(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
	_, err = NewSource(Config{Brokers: []string{"localhost:9092"}, Topics: []string{"t"}})
	assert.Error(t, err)
}
