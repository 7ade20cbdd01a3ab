// Package s3 stores dictionary documents as objects in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/golang-lru/simplelru"
)

// DefaultCacheSize is the number of documents kept in memory after loading
// or storing them.
const DefaultCacheSize = 16

type S3Interface interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Persist implements dictjson.Persist for objects in a bucket. Recently used
// documents are served from an LRU cache; Persist assumes it is the only
// writer of its prefix. It is safe for concurrent use.
type Persist struct {
	s3         S3Interface
	BucketName string
	Prefix     string
	mu         sync.Mutex // guards lru
	lru        *simplelru.LRU
}

// NewPersist returns a Persist that loads and stores documents as objects
// with the given S3 client and bucket name.
func NewPersist(client S3Interface, bucketName, prefix string) *Persist {
	lru, err := simplelru.NewLRU(DefaultCacheSize, nil)
	if err != nil {
		panic(err)
	}
	return &Persist{s3: client, BucketName: bucketName, Prefix: prefix, lru: lru}
}

// Load loads the bytes persisted in the named object.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	if cached, ok := p.cached(name); ok {
		return cached, nil
	}
	input := s3.GetObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
	}
	output, err := p.s3.GetObjectWithContext(ctx, &input)
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()
	b, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.lru.Add(name, bytes.Clone(b))
	p.mu.Unlock()
	return b, nil
}

// cached returns a copy of the cached document, so callers may modify it.
func (p *Persist) cached(name string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if doc, ok := p.lru.Get(name); ok {
		return bytes.Clone(doc.([]byte)), true
	}
	return nil, false
}

// Store persists doc in the named object, replacing an existing one.
func (p *Persist) Store(ctx context.Context, name string, doc []byte) error {
	input := s3.PutObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
		Body:   bytes.NewReader(doc),
	}
	_, err := p.s3.PutObjectWithContext(ctx, &input)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lru.Remove(name)
		return err
	}
	p.lru.Add(name, bytes.Clone(doc))
	return nil
}
