package contracts

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	_, validNEF := anyValidNEF(t)
	_, stakingManifest := anyValidManifest(t, "LP Staking")
	_, rewardManifest := anyValidManifest(t, "LP Staking Reward")

	_fs := fstest.MapFS{
		stakingDir + "/" + nefName:      &fstest.MapFile{Data: validNEF},
		stakingDir + "/" + manifestName: &fstest.MapFile{Data: stakingManifest},
		rewardDir + "/" + nefName:       &fstest.MapFile{Data: validNEF},
		rewardDir + "/" + manifestName:  &fstest.MapFile{Data: rewardManifest},
	}

	s, err := Read(_fs)
	require.NoError(t, err)
	require.Equal(t, "LP Staking", s.Staking.Manifest.Name)
	require.Equal(t, "LP Staking Reward", s.Reward.Manifest.Name)
}

func TestGetMissingFiles(t *testing.T) {
	_fs := fstest.MapFS{}

	// Missing NEF
	_, err := Read(_fs)
	require.Error(t, err)

	// Missing manifest.
	_fs[stakingDir+"/"+nefName] = &fstest.MapFile{}
	_, err = Read(_fs)
	require.Error(t, err)

	// Missing second contract.
	_, validNEF := anyValidNEF(t)
	_, validManifest := anyValidManifest(t, "zero")
	_fs[stakingDir+"/"+nefName] = &fstest.MapFile{Data: validNEF}
	_fs[stakingDir+"/"+manifestName] = &fstest.MapFile{Data: validManifest}
	_, err = Read(_fs)
	require.ErrorContains(t, err, rewardDir)
}

func TestReadInvalidFormat(t *testing.T) {
	var (
		_fs          = fstest.MapFS{}
		nefPath      = stakingDir + "/" + nefName
		manifestPath = stakingDir + "/" + manifestName
	)

	_, validNEF := anyValidNEF(t)
	_, validManifest := anyValidManifest(t, "zero")

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err := readContractFromDir(_fs, stakingDir)
	require.NoError(t, err)

	_fs[nefPath] = &fstest.MapFile{Data: []byte("not a NEF")}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err = readContractFromDir(_fs, stakingDir)
	require.ErrorIs(t, err, errInvalidNEF)

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: []byte("not a manifest")}

	_, err = readContractFromDir(_fs, stakingDir)
	require.ErrorIs(t, err, errInvalidManifest)
}

func anyValidNEF(tb testing.TB) (nef.File, []byte) {
	script := make([]byte, 32)

	_nef, err := nef.NewFile(script)
	require.NoError(tb, err)

	bNEF, err := _nef.Bytes()
	require.NoError(tb, err)

	return *_nef, bNEF
}

func anyValidManifest(tb testing.TB, name string) (manifest.Manifest, []byte) {
	_manifest := manifest.NewManifest(name)

	jManifest, err := json.Marshal(_manifest)
	require.NoError(tb, err)

	return *_manifest, jManifest
}
