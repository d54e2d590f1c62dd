package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamba-onchain-backend/config"
)

var pdf = []byte("%PDF-1.4\n%%EOF\n")

// multipartServer checks the uploaded file part and replies with body.
func multipartServer(t *testing.T, check func(r *http.Request), status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		assert.Equal(t, pdf, data)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeb3Storage(t *testing.T) {
	srv := multipartServer(t, func(r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
	}, http.StatusOK, `{"cid":"bafyabc"}`)

	s := NewWeb3Storage("tok")
	s.endpoint = srv.URL
	url, err := s.Upload(context.Background(), "cv.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, "https://bafyabc.ipfs.w3s.link", url)
}

func TestPinata(t *testing.T) {
	srv := multipartServer(t, func(r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		var meta map[string]string
		assert.NoError(t, json.Unmarshal([]byte(r.FormValue("pinataMetadata")), &meta))
		assert.Equal(t, "cv.pdf", meta["name"])
		assert.JSONEq(t, `{"cidVersion":0}`, r.FormValue("pinataOptions"))
	}, http.StatusOK, `{"IpfsHash":"QmHash"}`)

	p := NewPinata("key", "secret")
	p.endpoint = srv.URL
	url, err := p.Upload(context.Background(), "cv.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmHash", url)
}

func TestIPFSNode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := multipartServer(t, func(r *http.Request) {
			assert.Equal(t, "/api/v0/add", r.URL.Path)
		}, http.StatusOK, `{"Name":"cv.pdf","Hash":"QmNode","Size":"15"}`)

		url, err := NewIPFSNode(srv.URL+"/").Upload(context.Background(), "cv.pdf", pdf)
		require.NoError(t, err)
		assert.Equal(t, "https://ipfs.io/ipfs/QmNode", url)
	})

	t.Run("Provider failure aborts", func(t *testing.T) {
		srv := multipartServer(t, nil, http.StatusBadGateway, "down")
		_, err := NewIPFSNode(srv.URL).Upload(context.Background(), "cv.pdf", pdf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("Missing hash", func(t *testing.T) {
		srv := multipartServer(t, nil, http.StatusOK, `{}`)
		_, err := NewIPFSNode(srv.URL).Upload(context.Background(), "cv.pdf", pdf)
		assert.Error(t, err)
	})
}

func TestPlaceholder(t *testing.T) {
	p := NewPlaceholder()
	p.now = func() time.Time { return time.UnixMilli(1700000000123) }
	url, err := p.Upload(context.Background(), "cv.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.io/ipfs/placeholder-1700000000123", url)
}

type fakeS3 struct {
	put       *s3.PutObjectInput
	headErr   error
	created   bool
	putErr    error
	putObject []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	f.putObject, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.putErr
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{headErr: errors.New("not found")}
	s := newS3Storage(fake, S3Config{Bucket: "creds", Region: "us-east-1", Endpoint: "http://minio:9000/"})

	require.NoError(t, s.ensureBucket(context.Background()))
	assert.True(t, fake.created)

	url, err := s.Upload(context.Background(), "cv.pdf", pdf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://minio:9000/creds/credentials/"))
	assert.True(t, strings.HasSuffix(url, "/cv.pdf"))
	assert.Equal(t, "application/pdf", *fake.put.ContentType)
	assert.Equal(t, pdf, fake.putObject)

	aws := newS3Storage(fake, S3Config{Bucket: "creds", Region: "eu-west-1"})
	assert.Equal(t, "https://creds.s3.eu-west-1.amazonaws.com", aws.publicURL)
}

func TestNewSelectsFirstConfigured(t *testing.T) {
	ctx := context.Background()

	b, err := New(ctx, &config.Config{Web3StorageKey: "k", PinataAPIKey: "p", PinataSecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "web3.storage", b.Name())

	b, err = New(ctx, &config.Config{PinataAPIKey: "p", PinataSecretKey: "s", IPFSAPIURL: "http://localhost:5001"})
	require.NoError(t, err)
	assert.Equal(t, "pinata", b.Name())

	b, err = New(ctx, &config.Config{PinataAPIKey: "p", IPFSAPIURL: "http://localhost:5001"})
	require.NoError(t, err)
	assert.Equal(t, "ipfs", b.Name())

	b, err = New(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Equal(t, "placeholder", b.Name())
}
