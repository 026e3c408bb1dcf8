package Trees

// insertFixup restores the red/black properties after z was linked in as a red leaf.
func (u *base[K, S]) insertFixup(z S) {
	for p := u.ifs[z].p; p != 0 && u.ifs[p].red; p = u.ifs[z].p {
		g := u.ifs[p].p // p is red so it isn't the root.
		if p == u.ifs[g].l {
			if y := u.ifs[g].r; u.ifs[y].red {
				u.ifs[p].red, u.ifs[y].red, u.ifs[g].red = false, false, true
				z = g
				continue
			}
			if z == u.ifs[p].r {
				z = p
				u.rotateLeft(z)
				p = u.ifs[z].p
			}
			u.ifs[p].red, u.ifs[g].red = false, true
			u.rotateRight(g)
		} else {
			if y := u.ifs[g].l; u.ifs[y].red {
				u.ifs[p].red, u.ifs[y].red, u.ifs[g].red = false, false, true
				z = g
				continue
			}
			if z == u.ifs[p].l {
				z = p
				u.rotateRight(z)
				p = u.ifs[z].p
			}
			u.ifs[p].red, u.ifs[g].red = false, true
			u.rotateLeft(g)
		}
	}
	u.ifs[u.root].red = false
}

// blacken i unless it's the sentinel.
func (u *base[K, S]) blacken(i S) {
	if i != 0 {
		u.ifs[i].red = false
	}
}

// deleteFixup removes the extra black carried by x after a black node was spliced out above it.
// x may be 0, so its parent xp is passed along explicitly.
func (u *base[K, S]) deleteFixup(x, xp S) {
	for x != u.root && !u.ifs[x].red {
		if x == u.ifs[xp].l {
			w := u.ifs[xp].r
			if u.ifs[w].red {
				u.ifs[w].red, u.ifs[xp].red = false, true
				u.rotateLeft(xp)
				w = u.ifs[xp].r
			}
			if wn := u.ifs[w]; !u.ifs[wn.l].red && !u.ifs[wn.r].red {
				u.ifs[w].red = true
				x, xp = xp, u.ifs[xp].p
				continue
			}
			if !u.ifs[u.ifs[w].r].red {
				u.blacken(u.ifs[w].l)
				u.ifs[w].red = true
				u.rotateRight(w)
				w = u.ifs[xp].r
			}
			u.ifs[w].red, u.ifs[xp].red = u.ifs[xp].red, false
			u.blacken(u.ifs[w].r)
			u.rotateLeft(xp)
		} else {
			w := u.ifs[xp].l
			if u.ifs[w].red {
				u.ifs[w].red, u.ifs[xp].red = false, true
				u.rotateRight(xp)
				w = u.ifs[xp].l
			}
			if wn := u.ifs[w]; !u.ifs[wn.l].red && !u.ifs[wn.r].red {
				u.ifs[w].red = true
				x, xp = xp, u.ifs[xp].p
				continue
			}
			if !u.ifs[u.ifs[w].l].red {
				u.blacken(u.ifs[w].r)
				u.ifs[w].red = true
				u.rotateLeft(w)
				w = u.ifs[xp].l
			}
			u.ifs[w].red, u.ifs[xp].red = u.ifs[xp].red, false
			u.blacken(u.ifs[w].l)
			u.rotateRight(xp)
		}
		x = u.root
	}
	u.blacken(x)
}

// remove unlinks the node in slot z regardless of its multiplicity, rebalances, and releases the slot.
func (u *base[K, S]) remove(z S) {
	zn := u.ifs[z]
	var x, xp S
	removedRed := zn.red
	if zn.l == 0 {
		x, xp = zn.r, zn.p
		u.transplant(z, zn.r)
	} else if zn.r == 0 {
		x, xp = zn.l, zn.p
		u.transplant(z, zn.l)
	} else {
		// splice the successor y into z's position; y's original color is what leaves its old spot.
		y := u.minimum(zn.r)
		yn := u.ifs[y]
		removedRed, x = yn.red, yn.r
		if yn.p == z {
			xp = y
		} else {
			xp = yn.p
			u.transplant(y, yn.r)
			u.ifs[y].r = zn.r
			u.ifs[zn.r].p = y
		}
		u.transplant(z, y)
		u.ifs[y].l = zn.l
		u.ifs[zn.l].p = y
		u.ifs[y].red = zn.red
	}
	u.updatePath(xp)
	if !removedRed {
		u.deleteFixup(x, xp)
	}
	u.release(z)
}
