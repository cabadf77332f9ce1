package lambdaboot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	calls   int
	name    string
	decrypt bool
	value   *string
	err     error
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.name = *in.Name
	f.decrypt = aws.ToBool(in.WithDecryption)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: f.value}}, nil
}

func TestLoadGeminiKeyPrefersEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	fake := &fakeSSM{value: aws.String("from-ssm")}
	if got := LoadGeminiKey(context.Background(), fake, "/p"); got != "from-env" {
		t.Errorf("got %q, want from-env", got)
	}
	if fake.calls != 0 {
		t.Error("SSM should not be called when env is set")
	}
}

func TestLoadGeminiKeyFromSSM(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	fake := &fakeSSM{value: aws.String(" from-ssm\n")}
	got := LoadGeminiKey(context.Background(), fake, "/photo-editor/prod/gemini-api-key")
	if got != "from-ssm" {
		t.Errorf("got %q, want from-ssm", got)
	}
	if fake.name != "/photo-editor/prod/gemini-api-key" || !fake.decrypt {
		t.Errorf("request name=%q decrypt=%v", fake.name, fake.decrypt)
	}
}

func TestLoadGeminiKeyFailuresAreNotFatal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if got := LoadGeminiKey(context.Background(), &fakeSSM{err: errors.New("AccessDenied")}, "/p"); got != "" {
		t.Errorf("got %q on SSM error", got)
	}
	if got := LoadGeminiKey(context.Background(), &fakeSSM{}, "/p"); got != "" {
		t.Errorf("got %q for empty parameter", got)
	}
	if got := LoadGeminiKey(context.Background(), nil, "/p"); got != "" {
		t.Errorf("got %q without client", got)
	}
}

func TestInitExporterOptional(t *testing.T) {
	if exp := InitExporterOptional(aws.Config{}, ""); exp != nil {
		t.Error("expected nil exporter without bucket")
	}
	exp := InitExporterOptional(aws.Config{Region: "us-east-1"}, "edits")
	if exp == nil || exp.Bucket() != "edits" {
		t.Errorf("exporter = %v", exp)
	}
}

func TestStartupLog(t *testing.T) {
	if StartupLog("edit-lambda", time.Now()) == nil {
		t.Error("StartupLog returned nil")
	}
}
