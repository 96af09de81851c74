package domain

import "github.com/near/borsh-go"

// DeveloperIndex owner 名下的资源名列表（路由与 SOCB 各一份）
type DeveloperIndex struct {
	Names []string
}

func (d *DeveloperIndex) Contains(name string) bool {
	for _, n := range d.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (d DeveloperIndex) Marshal() ([]byte, error) {
	return borsh.Serialize(d)
}

func UnmarshalDeveloperIndex(data []byte) (*DeveloperIndex, error) {
	var d DeveloperIndex
	if err := decodeBorsh(&d, data); err != nil {
		return nil, err
	}
	return &d, nil
}
