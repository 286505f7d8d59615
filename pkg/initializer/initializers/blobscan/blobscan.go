// Package blobscan provides an initializer that derives a root input's
// split set from Azure Blob Storage: every blob under a configured prefix
// becomes one split. It targets real accounts and local Azurite instances
// over HTTP alike.
package blobscan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"

	"github.com/wehubfusion/Talaria/pkg/dag"
	"github.com/wehubfusion/Talaria/pkg/initializer"
)

// Name is the registry name of this initializer.
const Name = "blobscan"

// Config represents the configuration for a blob scanning initializer
type Config struct {
	// ConnectionString is a standard Azure storage connection string
	ConnectionString string `json:"connectionString"`

	// Container is the container to scan
	Container string `json:"container"`

	// Prefix limits the scan to blobs under this path prefix
	Prefix string `json:"prefix,omitempty"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Container == "" {
		return fmt.Errorf("container name is required")
	}
	return nil
}

// Split is the payload emitted for one discovered blob.
type Split struct {
	Blob      string `json:"blob"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Initializer lists blobs under the configured prefix and emits one output
// event per blob. An external event carrying {"prefix": "..."} replaces the
// prefix for a run that has not started listing yet.
type Initializer struct {
	config *Config
	client *azblob.Client
	logger *zap.Logger

	mu     sync.Mutex
	prefix string
}

// New creates a blobscan initializer with a no-op logger.
func New(descriptor dag.InputDescriptor) (initializer.Initializer, error) {
	return NewWithLogger(zap.NewNop())(descriptor)
}

// NewWithLogger returns a creator that builds blobscan initializers using
// the given logger.
func NewWithLogger(logger *zap.Logger) initializer.Creator {
	return func(descriptor dag.InputDescriptor) (initializer.Initializer, error) {
		if logger == nil {
			logger = zap.NewNop()
		}

		var config Config
		if err := json.Unmarshal(descriptor.Config, &config); err != nil {
			return nil, fmt.Errorf("failed to parse blobscan config: %w", err)
		}
		if err := config.Validate(); err != nil {
			return nil, err
		}

		client, err := newBlobClient(config.ConnectionString)
		if err != nil {
			return nil, err
		}

		return &Initializer{
			config: &config,
			client: client,
			logger: logger,
			prefix: config.Prefix,
		}, nil
	}
}

// newBlobClient creates a shared-key blob client from a standard connection
// string.
func newBlobClient(connectionString string) (*azblob.Client, error) {
	params := parseConnectionString(connectionString)
	accountName := params["AccountName"]
	accountKey := params["AccountKey"]
	serviceURL := params["BlobEndpoint"]
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("account name and key are required in the connection string")
	}
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	var clientOpts *azblob.ClientOptions
	if strings.HasPrefix(strings.ToLower(serviceURL), "http://") {
		clientOpts = &azblob.ClientOptions{
			ClientOptions: azcore.ClientOptions{
				InsecureAllowCredentialWithHTTP: true,
			},
		}
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return client, nil
}

// Run implements initializer.Initializer.
func (b *Initializer) Run(ctx context.Context, ictx *initializer.Context) ([]dag.OutputEvent, error) {
	b.mu.Lock()
	prefix := b.prefix
	b.mu.Unlock()

	var listOpts azblob.ListBlobsFlatOptions
	if prefix != "" {
		listOpts.Prefix = &prefix
	}

	var events []dag.OutputEvent
	pager := b.client.NewListBlobsFlatPager(b.config.Container, &listOpts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs for input %q: %w", ictx.InputName(), err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			split := Split{Blob: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				split.SizeBytes = *item.Properties.ContentLength
			}
			payload, err := json.Marshal(split)
			if err != nil {
				return nil, err
			}
			events = append(events, dag.OutputEvent{Payload: payload})
		}
	}

	b.logger.Info("Blob scan complete",
		zap.String("input", ictx.InputName()),
		zap.String("container", b.config.Container),
		zap.String("prefix", prefix),
		zap.Int("splits", len(events)))

	return events, nil
}

// HandleInputInitializerEvent implements initializer.Initializer.
func (b *Initializer) HandleInputInitializerEvent(events []*dag.InitializerEvent) error {
	for _, event := range events {
		if event == nil || len(event.Payload) == 0 {
			continue
		}
		var update struct {
			Prefix string `json:"prefix"`
		}
		if err := json.Unmarshal(event.Payload, &update); err != nil {
			return fmt.Errorf("failed to parse blobscan event payload: %w", err)
		}
		if update.Prefix != "" {
			b.mu.Lock()
			b.prefix = update.Prefix
			b.mu.Unlock()
		}
	}
	return nil
}

func parseConnectionString(connectionString string) map[string]string {
	parts := strings.Split(connectionString, ";")
	params := make(map[string]string, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(part, "=")
		if idx <= 0 {
			continue
		}
		key := part[:idx]
		value := part[idx+1:]
		params[key] = value
	}
	return params
}
