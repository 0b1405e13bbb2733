package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/monitoring"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 || tlsCfg.RootCAs == nil {
		t.Fatalf("tls config incomplete")
	}
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatal("expected error for missing files")
	}
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{
		Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p",
		LWTTopic: "engine/status", LWTPayload: "offline", LWTQoS: 1,
	})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	if !opts.WillEnabled || opts.WillTopic != "engine/status" || string(opts.WillPayload) != "offline" {
		t.Fatalf("will options incorrect")
	}
}

func TestClientIDSuffix(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	if _, err := NewClient(Config{Broker: "tcp://localhost:1883", ClientID: "engine"}, "feed"); err != nil {
		t.Fatalf("client: %v", err)
	}
	if mc.opts.ClientID != "engine-feed" {
		t.Fatalf("unexpected client id %q", mc.opts.ClientID)
	}
}

func TestPublishQoSAndRetry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	withMock(t, mc)
	cli, err := NewClient(Config{Broker: "tcp://localhost:1883", QoS: map[string]byte{"notify": 1}, MaxRetries: 1, BackoffMS: 1}, "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("alerts/critical/V1", "notify", false, []byte("{}")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 || mc.published[1].qos != 1 {
		t.Fatalf("expected retry with qos 1, got %+v", mc.published)
	}
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishFailureCaptured(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	withMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	t.Cleanup(coremon.Reset)

	cli, err := NewClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("traffic/plan", "plan", true, nil); !errors.Is(err, fail) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if mon.err == nil || mon.tags["module"] != "mqtt" || mon.tags["topic"] != "traffic/plan" {
		t.Fatalf("error not captured: %+v", mon)
	}
}

func TestSubscriptionsRestoredOnConnect(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cli, err := NewClient(Config{Broker: "tcp://localhost:1883", QoS: map[string]byte{"sensors": 1}}, "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Subscribe("sensors/vehicle/+", "sensors", func(paho.Client, paho.Message) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	mc.opts.OnConnect(nil)
	if len(mc.subscribed) != 2 || mc.subscribed[1].qos != 1 {
		t.Fatalf("subscription not restored: %+v", mc.subscribed)
	}
	cli.Disconnect()
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
