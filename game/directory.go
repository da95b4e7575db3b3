package game

// Directory 持有全部存活实体；Tick 期间唯一的修改入口
// 鹦鹉保持插入顺序，作为“最近目标”平局时的稳定次序
type Directory struct {
	parrots map[string]*Parrot
	order   []*Parrot

	feathers    []*Feather
	featherIdx  map[uint64]int
	nextFeather uint64
}

func NewDirectory() *Directory {
	return &Directory{
		parrots:    make(map[string]*Parrot),
		featherIdx: make(map[uint64]int),
	}
}

// Parrot 按 id 查找
func (d *Directory) Parrot(id string) (*Parrot, bool) {
	p, ok := d.parrots[id]
	return p, ok
}

// Parrots 按插入顺序返回；调用方不得在 Tick 之外持有
func (d *Directory) Parrots() []*Parrot {
	return d.order
}

func (d *Directory) ParrotCount() int {
	return len(d.order)
}

// CountKind 统计某一类存活鹦鹉
func (d *Directory) CountKind(k Kind) int {
	n := 0
	for _, p := range d.order {
		if p.Kind == k && p.Alive {
			n++
		}
	}
	return n
}

func (d *Directory) AddParrot(p *Parrot) bool {
	if _, exists := d.parrots[p.ID]; exists {
		return false
	}
	d.parrots[p.ID] = p
	d.order = append(d.order, p)
	return true
}

// RemoveParrot 移除鹦鹉，不产生羽毛
func (d *Directory) RemoveParrot(id string) (*Parrot, bool) {
	p, ok := d.parrots[id]
	if !ok {
		return nil, false
	}
	delete(d.parrots, id)
	for i, q := range d.order {
		if q == p {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return p, true
}

// PurgeDead 一次性移除所有已死亡的鹦鹉并按原顺序返回
func (d *Directory) PurgeDead() []*Parrot {
	var dead []*Parrot
	kept := d.order[:0]
	for _, p := range d.order {
		if p.Alive {
			kept = append(kept, p)
			continue
		}
		dead = append(dead, p)
		delete(d.parrots, p.ID)
	}
	for i := len(kept); i < len(d.order); i++ {
		d.order[i] = nil
	}
	d.order = kept
	return dead
}

// Feathers 当前羽毛，顺序在移除后会变化
func (d *Directory) Feathers() []*Feather {
	return d.feathers
}

func (d *Directory) FeatherCount() int {
	return len(d.feathers)
}

// CountFeathers 统计某一类型的羽毛
func (d *Directory) CountFeathers(t FeatherType) int {
	n := 0
	for _, f := range d.feathers {
		if f.Type == t {
			n++
		}
	}
	return n
}

func (d *Directory) Feather(id uint64) (*Feather, bool) {
	i, ok := d.featherIdx[id]
	if !ok {
		return nil, false
	}
	return d.feathers[i], true
}

// AddFeather 分配 id 并插入
func (d *Directory) AddFeather(f Feather) *Feather {
	d.nextFeather++
	f.ID = d.nextFeather
	nf := &f
	d.featherIdx[nf.ID] = len(d.feathers)
	d.feathers = append(d.feathers, nf)
	return nf
}

// RemoveFeather 用末尾元素填洞，O(1)
func (d *Directory) RemoveFeather(id uint64) bool {
	i, ok := d.featherIdx[id]
	if !ok {
		return false
	}
	last := len(d.feathers) - 1
	if i != last {
		moved := d.feathers[last]
		d.feathers[i] = moved
		d.featherIdx[moved.ID] = i
	}
	d.feathers[last] = nil
	d.feathers = d.feathers[:last]
	delete(d.featherIdx, id)
	return true
}
