package sqlinline

const QSelectGlobalLimits = `--sql 3f38bc1b-4de3-479f-a29b-12122797ae87
select free_limit, premium_limit, package_price, promo_price
from settings
where id = 'global'
limit 1;
`

const QUpsertGlobalLimits = `--sql b2066a5f-89fc-43cc-9693-a99af00b742c
insert into settings (id, free_limit, premium_limit, package_price, promo_price, updated_at)
values ('global', $1::int, $2::int, $3::int, $4::int, now())
on conflict (id) do update set
    free_limit = excluded.free_limit,
    premium_limit = excluded.premium_limit,
    package_price = excluded.package_price,
    promo_price = excluded.promo_price,
    updated_at = now();
`
