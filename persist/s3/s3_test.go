package s3_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/npillmayer/zhconv"
	"github.com/npillmayer/zhconv/dictjson"
	s3Persist "github.com/npillmayer/zhconv/persist/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testS3Client() (*s3.S3, string, func()) {
	backend := s3mem.New()
	faker := gofakes3.New(backend)
	ts := httptest.NewServer(faker.Server())

	s3Config := &aws.Config{
		Credentials: credentials.NewStaticCredentials(
			"TEST-ACCESSKEYID",
			"TEST-SECRETACCESSKEY",
			"",
		),
		Endpoint:         aws.String(ts.URL),
		Region:           aws.String("ca-west-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	}
	newSession := session.New(s3Config)
	bucketName := randBucketName()
	client := s3.New(newSession)
	client.CreateBucket(&s3.CreateBucketInput{
		Bucket: &bucketName,
	})
	return client, bucketName, func() { ts.Close() }
}

func randBucketName() string {
	i, err := rand.Int(rand.Reader, big.NewInt(math.MaxUint32))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("bucket-%s", i)
}

func TestHappyCase(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := testS3Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "dicts/")
	err := p.Store(context.Background(), "doc.json", []byte(`{"st_characters": [{}, 0]}`))
	require.NoError(t, err)
	b, err := p.Load(context.Background(), "doc.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"st_characters": [{}, 0]}`), b)

	out, err := c.GetObject(&s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    aws.String("dicts/doc.json"),
	})
	require.NoError(t, err)
	out.Body.Close()
}

func TestLoadServesFromCache(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := testS3Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "")
	ctx := context.Background()
	require.NoError(t, p.Store(ctx, "doc.json", []byte("{}")))
	_, err := c.DeleteObject(&s3.DeleteObjectInput{
		Bucket: &bucketName,
		Key:    aws.String("doc.json"),
	})
	require.NoError(t, err)
	b, err := p.Load(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), b)

	fresh := s3Persist.NewPersist(c, bucketName, "")
	_, err = fresh.Load(ctx, "doc.json")
	assert.Error(t, err)
}

func TestStoreCopiesDocument(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := testS3Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "")
	ctx := context.Background()
	doc := []byte("{}")
	require.NoError(t, p.Store(ctx, "doc.json", doc))
	doc[0] = 'x'
	b, err := p.Load(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), b)
}

func TestLoadedDocumentIsACopy(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := testS3Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "")
	ctx := context.Background()
	require.NoError(t, p.Store(ctx, "doc.json", []byte("{}")))
	b, err := p.Load(ctx, "doc.json")
	require.NoError(t, err)
	b[0] = 'x'
	b, err = p.Load(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), b, "changing a loaded document must not change the cache")
}

func TestConcurrentLoads(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := testS3Client()
	defer closer()

	p := s3Persist.NewPersist(c, bucketName, "")
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Store(ctx, fmt.Sprintf("doc%d.json", i), []byte(fmt.Sprintf(`{"n": %d}`, i))))
	}
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for g := range errs {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("doc%d.json", g%4)
			b, err := p.Load(ctx, name)
			if err == nil && string(b) != fmt.Sprintf(`{"n": %d}`, g%4) {
				err = fmt.Errorf("%s: unexpected content %q", name, b)
			}
			errs[g] = err
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestDictionaryDocumentRoundTrip(t *testing.T) {
	t.Parallel()
	c, bucketName, closer := testS3Client()
	defer closer()

	set := zhconv.NewDictionarySet()
	set.Set(zhconv.STCharacters, zhconv.NewDictionary("st_characters", map[string]string{"龙": "龍"}))
	set.Set(zhconv.STPhrases, zhconv.NewDictionary("st_phrases", map[string]string{"龙王": "龍王"}))
	idx, err := set.BuildStarterIndex()
	require.NoError(t, err)
	set.InjectStarterIndex(idx)

	ctx := context.Background()
	require.NoError(t, dictjson.Save(ctx, s3Persist.NewPersist(c, bucketName, ""), "dictionary_maxlength.json", set))
	back, err := dictjson.Fetch(ctx, s3Persist.NewPersist(c, bucketName, ""), "dictionary_maxlength.json")
	require.NoError(t, err)
	require.NotNil(t, back.StarterIndex())
	assert.Equal(t, 2, back.StarterIndex().GlobalCap())

	got, err := zhconv.New(back).Convert("龙王", zhconv.S2T, false)
	require.NoError(t, err)
	assert.Equal(t, "龍王", got)
}
