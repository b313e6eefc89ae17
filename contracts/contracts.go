/*
Package contracts reads compiled LP staking contracts and provides access to
them.

Contracts are compiled with `neo-go contract compile` into a directory with
the following layout:

	staking/contract.nef
	staking/manifest.json
	reward/contract.nef
	reward/manifest.json
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	stakingDir = "staking"
	rewardDir  = "reward"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about Neo contract stored in the directory.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Set groups all contracts of the LP staking system.
type Set struct {
	Staking Contract
	Reward  Contract
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")
)

// Read reads both LP staking contracts from the given file system.
func Read(_fs fs.FS) (Set, error) {
	var (
		res Set
		err error
	)

	res.Staking, err = readContractFromDir(_fs, stakingDir)
	if err != nil {
		return res, fmt.Errorf("read contract %s: %w", stakingDir, err)
	}

	res.Reward, err = readContractFromDir(_fs, rewardDir)
	if err != nil {
		return res, fmt.Errorf("read contract %s: %w", rewardDir, err)
	}

	return res, nil
}

func readContractFromDir(_fs fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS always uses "/", so filepath.Join() is not applicable.
	fNEF, err := _fs.Open(dir + "/" + nefName)
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := _fs.Open(dir + "/" + manifestName)
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}
